package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_EmptyText(t *testing.T) {
	res := Score("   ")
	assert.Zero(t, res.Score)
	assert.Empty(t, res.PositiveHits)
	assert.Empty(t, res.NegativeHits)
	assert.Zero(t, res.HitCount())
}

func TestScore_NoKeywordHits(t *testing.T) {
	res := Score("The quarterly report was published this morning.")
	assert.Zero(t, res.Score)
	assert.Empty(t, res.PositiveHits)
	assert.Empty(t, res.NegativeHits)
}

func TestScore_AllNegative(t *testing.T) {
	res := Score("Shares plunge after fraud investigation widens")
	assert.InDelta(t, -1, res.Score, 1e-9)
	assert.Empty(t, res.PositiveHits)
	assert.Contains(t, res.NegativeHits, "plunge")
	assert.Contains(t, res.NegativeHits, "fraud")
	assert.Contains(t, res.NegativeHits, "investigation")
}

func TestScore_Mixed(t *testing.T) {
	// positives: "beats expectations" 3, "beat" 1, "profit" 1 = 5
	// negatives: "lawsuit" 2
	res := Score("Profit beats expectations despite ongoing lawsuit")
	assert.InDelta(t, 3.0/7.0, res.Score, 1e-9)
	assert.Contains(t, res.PositiveHits, "beats expectations")
	assert.Contains(t, res.NegativeHits, "lawsuit")
}

func TestScore_PerPhraseCap(t *testing.T) {
	// "surge" appears four times but only three count, so the positive total
	// is 9 against "crash" at 3.
	res := Score("surge surge surge surge and then a crash")
	assert.InDelta(t, (9.0-3.0)/12.0, res.Score, 1e-9)
}

func TestScore_NegationBonus(t *testing.T) {
	// "loss" scores 1 negative; "narrower loss" adds 1.5 to the positives.
	res := Score("Company reports narrower loss")
	assert.InDelta(t, (1.5-1.0)/2.5, res.Score, 1e-9)
	assert.Positive(t, res.Score)
}

func TestScore_CaseInsensitive(t *testing.T) {
	upper := Score("RECORD PROFIT AND RALLY")
	lower := Score("record profit and rally")
	assert.Equal(t, lower.Score, upper.Score)
	assert.Equal(t, lower.HitCount(), upper.HitCount())
}

func TestHitCount(t *testing.T) {
	res := Result{
		PositiveHits: []string{"rally", "growth"},
		NegativeHits: []string{"lawsuit"},
	}
	assert.Equal(t, 3, res.HitCount())
}
