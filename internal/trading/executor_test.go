package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfl-dev/paperfolio/internal/decision"
	"github.com/pfl-dev/paperfolio/internal/storage"
)

func TestApplyBuy_WeightedAverageCost(t *testing.T) {
	pos := &storage.Position{Symbol: "AAPL", Shares: 100, CostPrice: 50, CostCurrency: "USD"}

	ApplyBuy(pos, 50, 80, "USD")

	assert.Equal(t, int64(150), pos.Shares)
	// (100*50 + 50*80) / 150 = 60
	assert.InDelta(t, 60, pos.CostPrice, 1e-9)
	assert.Equal(t, "USD", pos.CostCurrency)
	assert.InDelta(t, 80, pos.CurrentPrice, 1e-9)
}

func TestApplyBuy_FirstLot(t *testing.T) {
	pos := &storage.Position{Symbol: "AAPL"}
	ApplyBuy(pos, 10, 42.5, "USD")

	assert.Equal(t, int64(10), pos.Shares)
	assert.InDelta(t, 42.5, pos.CostPrice, 1e-9)
}

func TestApplySell_CostBasisUntouched(t *testing.T) {
	pos := &storage.Position{Symbol: "AAPL", Shares: 100, CostPrice: 50}

	ApplySell(pos, 30, 70, "USD")

	assert.Equal(t, int64(70), pos.Shares)
	assert.InDelta(t, 50, pos.CostPrice, 1e-9)
	assert.InDelta(t, 70, pos.CurrentPrice, 1e-9)
}

func TestApplySell_FloorsAtZero(t *testing.T) {
	pos := &storage.Position{Symbol: "AAPL", Shares: 5, CostPrice: 50}
	ApplySell(pos, 20, 70, "USD")
	assert.Equal(t, int64(0), pos.Shares)
}

func TestExecute(t *testing.T) {
	d := &decision.Decision{Symbol: "AAPL", Action: decision.Buy, Confidence: 80, Reasoning: "why"}
	pos := &storage.Position{Symbol: "AAPL"}

	trade := Execute(d, pos, 10, 100, "USD")
	require.NotNil(t, trade)
	assert.Equal(t, "AAPL", trade.Symbol)
	assert.Equal(t, "BUY", trade.Action)
	assert.Equal(t, int64(10), trade.Shares)
	assert.InDelta(t, 100, trade.Price, 1e-9)
	assert.Equal(t, "why", trade.Reason)
	assert.Equal(t, int64(10), pos.Shares)
}

func TestExecute_NoTradeOnZeroQty(t *testing.T) {
	d := &decision.Decision{Symbol: "AAPL", Action: decision.Buy}
	pos := &storage.Position{Symbol: "AAPL"}
	assert.Nil(t, Execute(d, pos, 0, 100, "USD"))
	assert.Equal(t, int64(0), pos.Shares)
}

func TestExecute_HoldProducesNothing(t *testing.T) {
	d := &decision.Decision{Symbol: "AAPL", Action: decision.Hold}
	pos := &storage.Position{Symbol: "AAPL", Shares: 10}
	assert.Nil(t, Execute(d, pos, 5, 100, "USD"))
	assert.Equal(t, int64(10), pos.Shares)
}
