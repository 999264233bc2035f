// Package sentiment scores free news text with weighted keyword tables.
// Pure string work, no I/O.
package sentiment

import "strings"

// maxHitsPerPhrase caps per-phrase occurrences so one syndicated article
// repeated across outlets cannot skew the score.
const maxHitsPerPhrase = 3

// Result is the scored text: Score in [-1,1] plus the phrases that fired.
type Result struct {
	Score        float64  `json:"score"`
	PositiveHits []string `json:"positive_hits"`
	NegativeHits []string `json:"negative_hits"`
}

// Score evaluates a news digest. Empty text or zero keyword hits give a
// zero score with empty hit lists.
func Score(text string) Result {
	res := Result{
		PositiveHits: []string{},
		NegativeHits: []string{},
	}
	if strings.TrimSpace(text) == "" {
		return res
	}

	lower := strings.ToLower(text)

	var positiveTotal, negativeTotal float64

	for _, kw := range positiveKeywords {
		n := countCapped(lower, kw.phrase)
		if n > 0 {
			positiveTotal += kw.weight * float64(n)
			res.PositiveHits = append(res.PositiveHits, kw.phrase)
		}
	}
	for _, kw := range negativeKeywords {
		n := countCapped(lower, kw.phrase)
		if n > 0 {
			negativeTotal += kw.weight * float64(n)
			res.NegativeHits = append(res.NegativeHits, kw.phrase)
		}
	}
	for _, pattern := range negationPatterns {
		if strings.Contains(lower, pattern) {
			positiveTotal += negationBonus
		}
	}

	if positiveTotal == 0 && negativeTotal == 0 {
		return res
	}

	score := (positiveTotal - negativeTotal) / (positiveTotal + negativeTotal)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	res.Score = score
	return res
}

// HitCount is the total number of distinct phrases that fired, used by the
// rule engine as a crude news-volume signal.
func (r Result) HitCount() int {
	return len(r.PositiveHits) + len(r.NegativeHits)
}

func countCapped(haystack, phrase string) int {
	n := strings.Count(haystack, phrase)
	if n > maxHitsPerPhrase {
		return maxHitsPerPhrase
	}
	return n
}
