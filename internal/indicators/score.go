package indicators

// compositeScore folds the individual indicators into one [-100,100] number.
// The composite reads every factor as trend confirmation: deeply oversold RSI
// or a price under the lower band count as weakness here. Contrarian
// adjustments (buy-the-dip and friends) belong to the decision rule engine,
// not the composite.
//
// Each factor contributes at most ±20 points and only counts when its inputs
// are defined; the sum is normalized by 20 × contributing factors.
func compositeScore(v *Vector, prices []float64) (float64, Signal) {
	total := 0.0
	factors := 0

	// RSI as momentum strength.
	if v.RSI14 != nil {
		r := *v.RSI14
		switch {
		case r < 20:
			total -= 20
		case r < 30:
			total -= 15
		case r > 80:
			total += 20
		case r > 70:
			total += 15
		}
		factors++
	}

	// Moving-average ordering.
	if v.SMA5 != nil && v.SMA20 != nil && v.SMA60 != nil {
		if *v.SMA5 > *v.SMA20 && *v.SMA20 > *v.SMA60 {
			total += 15
		} else if *v.SMA5 < *v.SMA20 && *v.SMA20 < *v.SMA60 {
			total -= 15
		}
		factors++
	}

	// Golden / death cross: compare today's SMA pair against the pair one
	// period back.
	if v.SMA5 != nil && v.SMA20 != nil && len(prices) >= 21 {
		prev5 := sma(prices[1:], 5)
		prev20 := sma(prices[1:], 20)
		if prev5 != nil && prev20 != nil {
			if *prev5 <= *prev20 && *v.SMA5 > *v.SMA20 {
				total += 20
			} else if *prev5 >= *prev20 && *v.SMA5 < *v.SMA20 {
				total -= 20
			}
			factors++
		}
	}

	// Price versus SMA20.
	if v.SMA20 != nil {
		if prices[0] > *v.SMA20 {
			total += 10
		} else if prices[0] < *v.SMA20 {
			total -= 10
		}
		factors++
	}

	// MACD: bullish iff the histogram is positive, bearish otherwise.
	if v.MACDHistogram != nil {
		if *v.MACDHistogram > 0 {
			total += 12
		} else {
			total -= 12
		}
		factors++
	}

	// Band position: riding the upper band is strength, sitting under the
	// lower band is breakdown.
	if v.BollingerPosition != nil {
		p := *v.BollingerPosition
		switch {
		case p < 0.1:
			total -= 15
		case p < 0.25:
			total -= 8
		case p > 0.9:
			total += 15
		case p > 0.75:
			total += 8
		}
		factors++
	}

	// Short-term rate of change.
	if v.ROC5 != nil {
		r := *v.ROC5
		switch {
		case r > 5:
			total += 10
		case r > 2:
			total += 5
		case r < -5:
			total -= 10
		case r < -2:
			total -= 5
		}
		factors++
	}

	// Volume-confirmed momentum.
	if v.VolumeRatio != nil && v.ROC5 != nil {
		if v.VolumeTrend == "increasing" {
			if *v.ROC5 > 0 {
				total += 10
			} else if *v.ROC5 < 0 {
				total -= 10
			}
		}
		factors++
	}

	// Overextension: four or more same-direction days lean against the run.
	if v.ConsecutiveUp >= 4 {
		total -= 10
		factors++
	} else if v.ConsecutiveDown >= 4 {
		total += 10
		factors++
	}

	if factors == 0 {
		return 0, SignalNeutral
	}

	score := total / (20 * float64(factors)) * 100
	if score > 100 {
		score = 100
	}
	if score < -100 {
		score = -100
	}

	return score, signalFor(score)
}

func signalFor(score float64) Signal {
	switch {
	case score > 40:
		return SignalStrongBuy
	case score > 15:
		return SignalBuy
	case score < -40:
		return SignalStrongSell
	case score < -15:
		return SignalSell
	default:
		return SignalNeutral
	}
}
