package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pfl-dev/paperfolio/internal/config"
	"github.com/pfl-dev/paperfolio/internal/decision"
	"github.com/pfl-dev/paperfolio/internal/engine"
	"github.com/pfl-dev/paperfolio/internal/logger"
	"github.com/pfl-dev/paperfolio/internal/market"
	"github.com/pfl-dev/paperfolio/internal/news"
	"github.com/pfl-dev/paperfolio/internal/scheduler"
	"github.com/pfl-dev/paperfolio/internal/storage"
	"github.com/pfl-dev/paperfolio/internal/telegram"
	"github.com/pfl-dev/paperfolio/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/paperfolio.db", "path to SQLite database")
	flag.Parse()

	// Optional .env for local secrets; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("starting paperfolio",
		"instruments", len(cfg.Instruments), "auto_trade", cfg.Trading.AutoTrade)

	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quotes := market.NewClient(cfg.QuoteTimeout(), log)
	newsClient := news.NewClient(cfg.NewsTimeout(), log)
	notifier := telegram.NewNotifier(cfg, log)

	var model decision.Model
	if m := decision.NewOpenAIModel(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLMTimeout(), log); m != nil {
		model = m
		log.Info("model path enabled", "model", cfg.LLM.Model)
	} else {
		log.Warn("no model API key configured, rule engine only")
	}
	policy := decision.NewPolicy(model, log)

	eng := engine.New(cfg, repo, quotes, newsClient, policy, notifier, log)
	sched := scheduler.New(eng, cfg, log)
	webServer := web.NewServer(repo, cfg, log)

	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Error("scheduler error", "error", err)
		}
	}()

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	notifier.NotifyStatus("🤖 paperfolio started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	cancel() // stop scheduler

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	notifier.NotifyStatus("🛑 paperfolio stopped")
	log.Info("paperfolio stopped")
}
