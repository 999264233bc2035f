package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pfl-dev/paperfolio/internal/decision"
)

func TestSize(t *testing.T) {
	params := SizeParams{SizeCap: 100, MinLot: 10}

	tests := []struct {
		name       string
		action     decision.Action
		confidence int
		price      float64
		shares     int64
		params     SizeParams
		want       int64
	}{
		{"hold is always zero", decision.Hold, 90, 100, 50, params, 0},
		{"zero price blocks everything", decision.Buy, 90, 0, 0, params, 0},
		{"buy scales with confidence", decision.Buy, 80, 100, 0, params, 80},
		{"buy respects min lot", decision.Buy, 5, 100, 0, params, 10},
		{"fixed notional overrides scaling", decision.Buy, 80, 40, 0,
			SizeParams{FixedNotional: 1000, SizeCap: 100, MinLot: 10}, 25},
		{"sell with nothing held is zero", decision.Sell, 90, 100, 0, params, 0},
		{"sell fraction capped at a quarter", decision.Sell, 100, 100, 400, params, 100},
		{"sell scales below the cap", decision.Sell, 60, 100, 400, params, 60},
		{"sell at least one share", decision.Sell, 60, 100, 2, params, 1},
		{"sell never exceeds holdings", decision.Sell, 100, 100, 3, params, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Size(tt.action, tt.confidence, tt.price, tt.shares, tt.params)
			assert.Equal(t, tt.want, got)
		})
	}
}
