// Package trading sizes and applies simulated trades against the ledger.
// The sizer is pure; risk gates live at the cycle boundary.
package trading

import (
	"math"

	"github.com/pfl-dev/paperfolio/internal/decision"
)

// SizeParams configure per-instrument sizing.
type SizeParams struct {
	// FixedNotional, when >0, sizes every BUY as notional/price instead of
	// the confidence-scaled default.
	FixedNotional float64
	SizeCap       int
	MinLot        int
}

// Size converts a decision into a share quantity. HOLD is always zero, and a
// SELL with nothing held is zero: no shares to sell blocks the trade, not the
// signal.
func Size(action decision.Action, confidence int, price float64, shares int64, params SizeParams) int64 {
	if price <= 0 {
		return 0
	}

	switch action {
	case decision.Buy:
		if params.FixedNotional > 0 {
			return int64(math.Floor(params.FixedNotional / price))
		}
		qty := int64(math.Floor(float64(confidence) / 100 * float64(params.SizeCap)))
		if minLot := int64(params.MinLot); qty < minLot {
			qty = minLot
		}
		return qty

	case decision.Sell:
		if shares <= 0 {
			return 0
		}
		fraction := math.Min(0.25, float64(confidence)/400)
		qty := int64(math.Floor(float64(shares) * fraction))
		if qty < 1 {
			qty = 1
		}
		if qty > shares {
			qty = shares
		}
		return qty

	default:
		return 0
	}
}
