package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pfl-dev/paperfolio/internal/risk"
	"github.com/pfl-dev/paperfolio/internal/sentiment"
)

func TestBuildUserPrompt(t *testing.T) {
	dc := &Context{
		Symbol:           "9988.HK",
		Currency:         "HKD",
		Price:            85.5,
		Change:           -1.2,
		ChangePercent:    -1.38,
		PE:               12.4,
		Position:         PositionState{Shares: 200, CostPrice: 90, CostCurrency: "HKD", PnLPercent: -5},
		Sentiment:        sentiment.Result{Score: -0.4},
		News:             "- Regulator opens investigation\n",
		Risk:             risk.Flags{DailyTradeCount: 2, DailyTradeLimit: 6},
		RecentPrices:     []float64{85.5, 86.1, 87.0},
		TechnicalSummary: "price 85.50, technical score -20 (sell)",
		PriorDecisions: []PriorDecision{
			{Action: Hold, Confidence: 60, CreatedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)},
		},
		Now: time.Now(),
	}

	prompt := BuildUserPrompt(dc)

	assert.Contains(t, prompt, "9988.HK (HKD)")
	assert.Contains(t, prompt, "200 shares, cost 90.00 HKD, PnL -5.00%")
	assert.Contains(t, prompt, "PE: 12.4")
	assert.Contains(t, prompt, "technical score -20")
	assert.Contains(t, prompt, "trades_today=2/6")
	assert.Contains(t, prompt, "Regulator opens investigation")
	assert.Contains(t, prompt, "Sentiment score: -0.40")
	assert.Contains(t, prompt, "HOLD (60)")
}

func TestBuildUserPrompt_EmptyContext(t *testing.T) {
	prompt := BuildUserPrompt(&Context{Symbol: "AAPL", Currency: "USD", Price: 100})
	assert.Contains(t, prompt, "No open position.")
	assert.Contains(t, prompt, "No recent news found.")
}

func TestSystemPrompt_SpellsOutTheContract(t *testing.T) {
	assert.Contains(t, systemPrompt, `"action"`)
	assert.Contains(t, systemPrompt, `"confidence"`)
	assert.Contains(t, systemPrompt, `"reasoning"`)
}
