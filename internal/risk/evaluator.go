// Package risk recomputes the per-symbol risk flags fresh each cycle.
package risk

import (
	"time"

	"github.com/pfl-dev/paperfolio/internal/fx"
)

// Flags is derived state, never persisted.
type Flags struct {
	StopLossTriggered  bool    `json:"stop_loss_triggered"`
	MaxPositionReached bool    `json:"max_position_reached"`
	CooldownActive     bool    `json:"cooldown_active"`
	DailyTradeCount    int     `json:"daily_trade_count"`
	DailyTradeLimit    int     `json:"daily_trade_limit"`
	PnLPercent         float64 `json:"pnl_percent"` // 0 when no position
}

// Limits are the configured risk constraints.
type Limits struct {
	StopLossPct    float64 // negative threshold, e.g. -15
	MaxPositionUSD float64
	Cooldown       time.Duration
	DailyLimit     int
}

// Input is the market and ledger state the evaluator works from. The counts
// come from the data-store collaborator.
type Input struct {
	Price            float64
	Currency         string
	CostPrice        float64
	Shares           int64
	LastDecisionAt   time.Time // zero when no prior decision
	TradesToday      int
	Now              time.Time
}

// Evaluate applies the stop-loss, position-cap, cooldown and daily-limit
// rules. Position notional is converted to USD with the static fx table.
func Evaluate(in Input, limits Limits) Flags {
	flags := Flags{
		DailyTradeCount: in.TradesToday,
		DailyTradeLimit: limits.DailyLimit,
	}

	if in.Shares > 0 && in.CostPrice > 0 && in.Price > 0 {
		flags.PnLPercent = (in.Price - in.CostPrice) / in.CostPrice * 100
		if flags.PnLPercent < limits.StopLossPct {
			flags.StopLossTriggered = true
		}
	}

	if in.Shares > 0 && in.Price > 0 {
		notionalUSD := fx.ToUSD(in.Price*float64(in.Shares), in.Currency)
		if notionalUSD >= limits.MaxPositionUSD {
			flags.MaxPositionReached = true
		}
	}

	if !in.LastDecisionAt.IsZero() && limits.Cooldown > 0 {
		if in.Now.Sub(in.LastDecisionAt) < limits.Cooldown {
			flags.CooldownActive = true
		}
	}

	return flags
}
