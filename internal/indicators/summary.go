package indicators

import (
	"fmt"
	"strings"
)

// Summary renders the vector as a short human-readable digest for the model
// prompt. Undefined fields are skipped rather than rendered as zeros.
func Summary(v *Vector, price float64) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "price %.2f, technical score %.0f (%s)", price, v.Score, v.Signal)

	if v.RSI14 != nil {
		fmt.Fprintf(&sb, "; RSI14 %.0f", *v.RSI14)
	}
	if v.SMA5 != nil && v.SMA20 != nil {
		fmt.Fprintf(&sb, "; SMA5 %.2f vs SMA20 %.2f", *v.SMA5, *v.SMA20)
	}
	if v.SMA60 != nil {
		fmt.Fprintf(&sb, ", SMA60 %.2f", *v.SMA60)
	}
	if v.MACDHistogram != nil {
		dir := "bearish"
		if *v.MACDHistogram > 0 {
			dir = "bullish"
		}
		fmt.Fprintf(&sb, "; MACD %s (hist %.3f)", dir, *v.MACDHistogram)
	}
	if v.BollingerPosition != nil {
		fmt.Fprintf(&sb, "; Bollinger position %.2f", *v.BollingerPosition)
	}
	if v.VolatilityPct != nil {
		fmt.Fprintf(&sb, "; volatility %.1f%%", *v.VolatilityPct)
	}
	if v.VolumeRatio != nil {
		fmt.Fprintf(&sb, "; volume ratio %.2f (%s)", *v.VolumeRatio, v.VolumeTrend)
	}
	if v.ROC5 != nil {
		fmt.Fprintf(&sb, "; 5-period change %+.1f%%", *v.ROC5)
	}
	if v.ConsecutiveUp > 0 {
		fmt.Fprintf(&sb, "; %d consecutive up days", v.ConsecutiveUp)
	}
	if v.ConsecutiveDown > 0 {
		fmt.Fprintf(&sb, "; %d consecutive down days", v.ConsecutiveDown)
	}
	if v.DistanceFrom52WHigh != nil {
		fmt.Fprintf(&sb, "; %.1f%% from 52w high", *v.DistanceFrom52WHigh)
	}

	return sb.String()
}
