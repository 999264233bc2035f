package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToUSD(t *testing.T) {
	assert.InDelta(t, 100, ToUSD(100, "USD"), 1e-9)
	assert.InDelta(t, 12.8, ToUSD(100, "HKD"), 1e-9)
	assert.InDelta(t, 14, ToUSD(100, "CNY"), 1e-9)
	assert.InDelta(t, 100, ToUSD(100, "EUR"), 1e-9, "unknown currencies pass through")
}

func TestRate(t *testing.T) {
	assert.InDelta(t, 0.128, Rate("HKD"), 1e-9)
	assert.InDelta(t, 1.0, Rate("XYZ"), 1e-9)
}
