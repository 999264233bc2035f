package decision

import (
	"fmt"
	"math"
	"strings"
)

// maxReasoningLen bounds the stored reasoning text.
const maxReasoningLen = 500

// RuleEngine is the deterministic fallback: same context in, same decision
// out, no side effects.
type RuleEngine struct{}

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// Decide runs the multi-factor signal accumulation and thresholds the result
// into an action. The stop-loss flag short-circuits everything.
func (e *RuleEngine) Decide(dc *Context) *Decision {
	if dc.Risk.StopLossTriggered {
		return &Decision{
			Symbol:     dc.Symbol,
			Action:     Sell,
			Confidence: 90,
			Reasoning:  fmt.Sprintf("stop loss triggered: PnL %.1f%% below threshold", dc.Position.PnLPercent),
			Source:     SourceRules,
		}
	}

	signal, notes := e.accumulate(dc)
	return e.threshold(dc, signal, notes)
}

// SignalStrength returns the scalar Decide thresholds against, for auditing
// and tests. Not meaningful when the stop-loss flag is set.
func (e *RuleEngine) SignalStrength(dc *Context) float64 {
	signal, _ := e.accumulate(dc)
	return signal
}

func (e *RuleEngine) accumulate(dc *Context) (float64, []string) {
	var notes []string
	note := func(format string, args ...any) {
		notes = append(notes, fmt.Sprintf(format, args...))
	}

	// Seed from sentiment, amplified when the news flow is heavy.
	sentimentSeed := dc.Sentiment.Score * 30
	switch hits := dc.Sentiment.HitCount(); {
	case hits >= 6:
		sentimentSeed *= 1.3
	case hits >= 3:
		sentimentSeed *= 1.15
	}
	signal := sentimentSeed
	if sentimentSeed != 0 {
		note("sentiment %+.2f contributes %+.1f", dc.Sentiment.Score, sentimentSeed)
	}

	ind := dc.Technical
	if ind != nil {
		// Composite technical score, scaled down so no single block dominates.
		if ind.Score != 0 {
			delta := ind.Score * 0.4
			signal += delta
			note("technical score %.0f (%s) contributes %+.1f", ind.Score, ind.Signal, delta)
		}

		// Contrarian RSI extremes.
		if ind.RSI14 != nil {
			switch r := *ind.RSI14; {
			case r < 20:
				signal += 12
				note("RSI %.0f deeply oversold +12", r)
			case r < 30:
				signal += 8
				note("RSI %.0f oversold +8", r)
			case r > 80:
				signal -= 12
				note("RSI %.0f deeply overbought -12", r)
			case r > 70:
				signal -= 8
				note("RSI %.0f overbought -8", r)
			}
		}

		// MACD and sentiment pulling the same way reinforce each other.
		if ind.MACDHistogram != nil {
			if *ind.MACDHistogram > 0 && dc.Sentiment.Score > 0.1 {
				signal += 8
				note("MACD bullish with positive sentiment +8")
			} else if *ind.MACDHistogram < 0 && dc.Sentiment.Score < -0.1 {
				signal -= 8
				note("MACD bearish with negative sentiment -8")
			}
		}

		// Band extremes.
		if ind.BollingerPosition != nil {
			if *ind.BollingerPosition < 0.05 {
				signal += 6
				note("price below lower band +6")
			} else if *ind.BollingerPosition > 0.95 {
				signal -= 6
				note("price above upper band -6")
			}
		}

		// Volume-confirmed momentum.
		if ind.VolumeTrend == "increasing" && ind.ROC5 != nil {
			if *ind.ROC5 > 1 {
				signal += 6
				note("rising volume confirms up move +6")
			} else if *ind.ROC5 < -1 {
				signal -= 6
				note("rising volume confirms down move -6")
			}
		}

		// A sudden volume spike amplifies whatever signal is already there.
		if ind.VolumeRatio != nil && *ind.VolumeRatio > 2 {
			signal *= 1.15
			note("volume spike x%.2f amplifies signal", *ind.VolumeRatio)
		}

		// Mean-reversion dip buy: hammered under the band with washed-out RSI.
		if ind.BollingerPosition != nil && ind.RSI14 != nil &&
			*ind.BollingerPosition < 0.1 && *ind.RSI14 < 30 {
			signal += 12
			note("buy-the-dip: band position %.2f with RSI %.0f +12", *ind.BollingerPosition, *ind.RSI14)
		}
	}

	// Profit taking: holding through a pop off the recent low.
	if dc.Position.Shares > 0 {
		if low := recentLow(dc.RecentPrices); low > 0 && dc.Price > low*1.03 {
			signal -= 6
			note("price %.1f%% off recent low while holding -6", (dc.Price-low)/low*100)
		}
	}

	// Cost-basis protection.
	if dc.Position.Shares > 0 && dc.Position.CostPrice > 0 {
		pnl := dc.Position.PnLPercent

		// Averaging down is only attractive with technical support.
		if dc.Price < dc.Position.CostPrice*0.9 && ind != nil {
			supported := (ind.RSI14 != nil && *ind.RSI14 < 40) ||
				(ind.BollingerPosition != nil && *ind.BollingerPosition < 0.3)
			if supported {
				signal += 10
				note("average-down: %.1f%% below cost with technical support +10", -pnl)
			}
		}

		// Do not dump shares at breakeven right after a quick bounce.
		if pnl > -2 && pnl < 2 && ind != nil && ind.ROC5 != nil && *ind.ROC5 > 3 {
			signal += 5
			note("near cost after quick gain, hold bias +5")
		}

		// PnL bands.
		switch {
		case pnl >= 15:
			signal -= 8
			note("PnL %+.1f%% take-profit pressure -8", pnl)
		case pnl >= 8:
			signal -= 4
			note("PnL %+.1f%% mild take-profit pressure -4", pnl)
		case pnl <= -8:
			signal += 4
			note("PnL %+.1f%% averaging zone +4", pnl)
		}
	}

	// Valuation and dividend sweeteners.
	if dc.PE > 0 && dc.PE < 15 {
		signal += 3
		note("PE %.1f cheap +3", dc.PE)
	}
	if dc.DividendYield > 4 {
		signal += 3
		note("dividend yield %.1f%% +3", dc.DividendYield)
	}

	// Position cap: no amount of bullishness may push past the ceiling.
	if dc.Risk.MaxPositionReached && signal > 0 {
		signal = 0
		note("position cap reached, bullish signal clamped to 0")
	}

	return signal, notes
}

// threshold maps the accumulated signal strength to an action through the
// symbol's bands, honoring the calendar-window rebalance restriction.
func (e *RuleEngine) threshold(dc *Context, signal float64, notes []string) *Decision {
	th := dc.Thresholds
	if th.Buy == 0 {
		th.Buy = DefaultThresholds.Buy
	}
	if th.Sell == 0 {
		th.Sell = DefaultThresholds.Sell
	}

	action := Hold
	switch {
	case signal >= th.Buy:
		action = Buy
	case signal <= th.Sell:
		action = Sell
	}

	if action == Buy && th.RebalanceOnly {
		if dc.Now.Day() > th.RebalanceWindowDays {
			action = Hold
			notes = append(notes, fmt.Sprintf("rebalance-only: BUY deferred outside first %d days of the month", th.RebalanceWindowDays))
		}
	}

	confidence := int(math.Min(95, 55+math.Floor(math.Abs(signal))))

	reasoning := fmt.Sprintf("signal strength %+.1f", signal)
	if len(notes) > 0 {
		reasoning += ": " + strings.Join(notes, "; ")
	}
	if len(reasoning) > maxReasoningLen {
		reasoning = reasoning[:maxReasoningLen]
	}

	return &Decision{
		Symbol:     dc.Symbol,
		Action:     action,
		Confidence: confidence,
		Reasoning:  reasoning,
		Source:     SourceRules,
	}
}

func recentLow(prices []float64) float64 {
	low := 0.0
	for _, p := range prices {
		if p > 0 && (low == 0 || p < low) {
			low = p
		}
	}
	return low
}
