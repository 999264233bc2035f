package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pfl-dev/paperfolio/internal/indicators"
	"github.com/pfl-dev/paperfolio/internal/risk"
	"github.com/pfl-dev/paperfolio/internal/sentiment"
)

func fptr(f float64) *float64 { return &f }

// bullishNews is heavy positive coverage: six distinct phrases amplify the
// sentiment seed to 30 * 1.3 = 39.
var bullishNews = sentiment.Result{
	Score: 1,
	PositiveHits: []string{
		"beats expectations", "record profit", "upgrade",
		"rally", "buyback", "strong growth",
	},
}

var bearishNews = sentiment.Result{
	Score: -1,
	NegativeHits: []string{
		"misses expectations", "profit warning", "downgrade",
		"plunge", "lawsuit", "selloff",
	},
}

func midMonth() time.Time {
	return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
}

func TestRuleEngine_StopLossShortCircuits(t *testing.T) {
	e := NewRuleEngine()
	dc := &Context{
		Symbol:    "AAPL",
		Price:     80,
		Sentiment: bullishNews, // would otherwise be a clear BUY
		Position:  PositionState{Shares: 100, CostPrice: 100, PnLPercent: -20},
		Risk:      risk.Flags{StopLossTriggered: true},
		Now:       midMonth(),
	}

	d := e.Decide(dc)
	assert.Equal(t, Sell, d.Action)
	assert.Equal(t, 90, d.Confidence)
	assert.Equal(t, SourceRules, d.Source)
	assert.Contains(t, d.Reasoning, "stop loss")
}

func TestRuleEngine_SentimentDrivesAction(t *testing.T) {
	e := NewRuleEngine()

	d := e.Decide(&Context{Symbol: "AAPL", Price: 100, Sentiment: bullishNews, Now: midMonth()})
	assert.Equal(t, Buy, d.Action)
	assert.Equal(t, 94, d.Confidence, "confidence is 55 + |signal| capped at 95")

	d = e.Decide(&Context{Symbol: "AAPL", Price: 100, Sentiment: bearishNews, Now: midMonth()})
	assert.Equal(t, Sell, d.Action)
	assert.Equal(t, 94, d.Confidence)
}

func TestRuleEngine_NoSignalHolds(t *testing.T) {
	e := NewRuleEngine()
	d := e.Decide(&Context{Symbol: "AAPL", Price: 100, Now: midMonth()})
	assert.Equal(t, Hold, d.Action)
	assert.Equal(t, 55, d.Confidence)
}

func TestRuleEngine_MaxPositionClampsBullish(t *testing.T) {
	e := NewRuleEngine()
	dc := &Context{
		Symbol:    "AAPL",
		Price:     100,
		Sentiment: bullishNews,
		Risk:      risk.Flags{MaxPositionReached: true},
		Now:       midMonth(),
	}

	d := e.Decide(dc)
	assert.NotEqual(t, Buy, d.Action, "position cap must block any BUY")
	assert.Equal(t, Hold, d.Action)
	assert.InDelta(t, 0, e.SignalStrength(dc), 1e-9)
}

func TestRuleEngine_MaxPositionDoesNotBlockSell(t *testing.T) {
	e := NewRuleEngine()
	d := e.Decide(&Context{
		Symbol:    "AAPL",
		Price:     100,
		Sentiment: bearishNews,
		Risk:      risk.Flags{MaxPositionReached: true},
		Now:       midMonth(),
	})
	assert.Equal(t, Sell, d.Action)
}

func TestRuleEngine_AverageDownSupport(t *testing.T) {
	e := NewRuleEngine()
	tech := &indicators.Vector{RSI14: fptr(35), BollingerPosition: fptr(0.25)}

	flat := &Context{Symbol: "BABA", Price: 40.8, Technical: tech, Now: midMonth()}
	holding := &Context{
		Symbol:    "BABA",
		Price:     40.8,
		Technical: tech,
		Position:  PositionState{Shares: 100, CostPrice: 48, PnLPercent: -15},
		// low of 40 keeps the profit-taking adjustment out of the picture
		RecentPrices: []float64{40.8, 40, 42},
		Now:          midMonth(),
	}

	delta := e.SignalStrength(holding) - e.SignalStrength(flat)
	// +10 average-down (price >10% under cost with RSI support) and +4 for
	// the PnL averaging band.
	assert.InDelta(t, 14, delta, 1e-9)
}

func TestRuleEngine_ProfitTakingOffRecentLow(t *testing.T) {
	e := NewRuleEngine()

	base := &Context{Symbol: "MSFT", Price: 110, Now: midMonth()}
	holding := &Context{
		Symbol:       "MSFT",
		Price:        110,
		Position:     PositionState{Shares: 50, CostPrice: 109, PnLPercent: 0.9},
		RecentPrices: []float64{110, 104, 100, 102},
		Now:          midMonth(),
	}

	delta := e.SignalStrength(holding) - e.SignalStrength(base)
	assert.InDelta(t, -6, delta, 1e-9, "10% off the recent low while holding leans to profit taking")
}

func TestRuleEngine_RebalanceWindow(t *testing.T) {
	e := NewRuleEngine()
	th := Thresholds{Buy: 20, Sell: -20, RebalanceOnly: true, RebalanceWindowDays: 3}

	outside := &Context{
		Symbol: "VOO", Price: 500, Sentiment: bullishNews,
		Thresholds: th, Now: midMonth(),
	}
	d := e.Decide(outside)
	assert.Equal(t, Hold, d.Action)
	assert.Contains(t, d.Reasoning, "rebalance-only")

	inside := &Context{
		Symbol: "VOO", Price: 500, Sentiment: bullishNews,
		Thresholds: th, Now: time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
	}
	d = e.Decide(inside)
	assert.Equal(t, Buy, d.Action)
}

func TestRuleEngine_ThresholdOverrides(t *testing.T) {
	e := NewRuleEngine()
	d := e.Decide(&Context{
		Symbol: "AAPL", Price: 100, Sentiment: bullishNews,
		Thresholds: Thresholds{Buy: 50, Sell: -50},
		Now:        midMonth(),
	})
	assert.Equal(t, Hold, d.Action, "a signal of 39 must not clear a BUY band of 50")
}

func TestRuleEngine_ContrarianRSI(t *testing.T) {
	e := NewRuleEngine()
	base := &Context{Symbol: "NVDA", Price: 100, Now: midMonth()}

	oversold := &Context{
		Symbol: "NVDA", Price: 100,
		Technical: &indicators.Vector{RSI14: fptr(15)},
		Now:       midMonth(),
	}
	assert.InDelta(t, 12, e.SignalStrength(oversold)-e.SignalStrength(base), 1e-9)

	overbought := &Context{
		Symbol: "NVDA", Price: 100,
		Technical: &indicators.Vector{RSI14: fptr(85)},
		Now:       midMonth(),
	}
	assert.InDelta(t, -12, e.SignalStrength(overbought)-e.SignalStrength(base), 1e-9)
}

func TestRuleEngine_BuyTheDip(t *testing.T) {
	e := NewRuleEngine()
	dc := &Context{
		Symbol: "INTC", Price: 18,
		Technical: &indicators.Vector{
			RSI14:             fptr(25),
			BollingerPosition: fptr(0.08),
		},
		Now: midMonth(),
	}
	// oversold RSI +8, dip setup +12
	assert.InDelta(t, 20, e.SignalStrength(dc), 1e-9)
}

func TestRuleEngine_ReasoningBounded(t *testing.T) {
	e := NewRuleEngine()
	dc := &Context{
		Symbol: "TSLA", Price: 42,
		Sentiment: bullishNews,
		Technical: &indicators.Vector{
			Score:             80,
			Signal:            indicators.SignalStrongBuy,
			RSI14:             fptr(15),
			MACDHistogram:     fptr(1.5),
			BollingerPosition: fptr(0.02),
			VolumeRatio:       fptr(2.5),
			VolumeTrend:       "increasing",
			ROC5:              fptr(4),
		},
		Position: PositionState{Shares: 10, CostPrice: 60, PnLPercent: -30},
		PE:       10, DividendYield: 5,
		Now: midMonth(),
	}
	d := e.Decide(dc)
	assert.LessOrEqual(t, len(d.Reasoning), 500)
}
