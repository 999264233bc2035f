package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/pfl-dev/paperfolio/internal/config"
	"github.com/pfl-dev/paperfolio/internal/engine"
	"github.com/pfl-dev/paperfolio/internal/logger"
)

// Scheduler drives the decision cycle at the configured interval. The engine
// carries its own re-entrancy guard, so an overrunning cycle simply makes the
// next tick a no-op.
type Scheduler struct {
	cron   *cron.Cron
	engine *engine.Engine
	config *config.Config
	logger *logger.Logger
}

func New(eng *engine.Engine, cfg *config.Config, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		engine: eng,
		config: cfg,
		logger: log,
	}
}

// Run registers the cycle job, fires one cycle immediately, and blocks until
// the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.config.TradingInterval())
	if _, err := s.cron.AddFunc(spec, func() { s.runCycle(ctx) }); err != nil {
		return fmt.Errorf("register cycle job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "interval", s.config.TradingInterval().String())

	s.runCycle(ctx)

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) runCycle(ctx context.Context) {
	symbols := s.config.EnabledSymbols()
	if len(symbols) == 0 {
		s.logger.Warn("no enabled instruments, skipping cycle")
		return
	}

	if _, err := s.engine.RunCycle(ctx, symbols, s.config.Trading.AutoTrade); err != nil {
		s.logger.Warn("cycle not started", "error", err)
	}
}
