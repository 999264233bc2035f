// Package indicators derives a technical indicator vector from periodic
// price snapshots. Input series are most-recent-first throughout. Every
// derived field is a pointer so "not enough data" stays distinguishable
// from a real zero.
package indicators

import "math"

const (
	// minPoints is the floor below which no indicator is computed at all.
	minPoints = 5
	// fullPoints is what the slowest indicators (SMA60) need.
	fullPoints = 60
)

type Signal string

const (
	SignalStrongBuy  Signal = "strong_buy"
	SignalBuy        Signal = "buy"
	SignalNeutral    Signal = "neutral"
	SignalSell       Signal = "sell"
	SignalStrongSell Signal = "strong_sell"
)

// Sample is one historical snapshot, price required, volume optional.
type Sample struct {
	Price  float64
	Volume float64
}

type Vector struct {
	SMA5  *float64 `json:"sma5"`
	SMA20 *float64 `json:"sma20"`
	SMA60 *float64 `json:"sma60"`
	EMA12 *float64 `json:"ema12"`
	EMA26 *float64 `json:"ema26"`

	RSI14 *float64 `json:"rsi14"`

	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`

	BollingerUpper    *float64 `json:"bollinger_upper"`
	BollingerMiddle   *float64 `json:"bollinger_middle"`
	BollingerLower    *float64 `json:"bollinger_lower"`
	BollingerPosition *float64 `json:"bollinger_position"`

	ATR14         *float64 `json:"atr14"`
	VolatilityPct *float64 `json:"volatility_pct"`

	VolumeRatio *float64 `json:"volume_ratio"`
	VolumeTrend string   `json:"volume_trend"` // increasing, decreasing, stable

	ROC5  *float64 `json:"roc5"`
	ROC20 *float64 `json:"roc20"`

	ConsecutiveUp   int `json:"consecutive_up"`
	ConsecutiveDown int `json:"consecutive_down"`

	// Distances from the 52-week extremes, in percent of the extreme.
	// Computed even when the series is too short for everything else.
	DistanceFrom52WHigh *float64 `json:"distance_from_52w_high"`
	DistanceFrom52WLow  *float64 `json:"distance_from_52w_low"`

	Score  float64 `json:"score"` // composite, [-100, 100]
	Signal Signal  `json:"signal"`
}

// Bullish reports whether the MACD histogram is positive.
func (v *Vector) Bullish() bool {
	return v.MACDHistogram != nil && *v.MACDHistogram > 0
}

// Calculate builds the full vector. currentPrice, when >0 and deviating more
// than 0.1% from the newest stored point, is prepended as the freshest sample.
// high52/low52 are optional; pass 0 when unknown.
func Calculate(series []Sample, currentPrice, high52, low52 float64) *Vector {
	usable := make([]Sample, 0, len(series)+1)
	for _, s := range series {
		if s.Price > 0 {
			usable = append(usable, s)
		}
	}

	if currentPrice > 0 {
		if len(usable) == 0 || math.Abs(currentPrice-usable[0].Price)/usable[0].Price > 0.001 {
			usable = append([]Sample{{Price: currentPrice}}, usable...)
		}
	}

	v := &Vector{Signal: SignalNeutral}

	refPrice := currentPrice
	if refPrice <= 0 && len(usable) > 0 {
		refPrice = usable[0].Price
	}
	if refPrice > 0 {
		if high52 > 0 {
			v.DistanceFrom52WHigh = fptr((refPrice - high52) / high52 * 100)
		}
		if low52 > 0 {
			v.DistanceFrom52WLow = fptr((refPrice - low52) / low52 * 100)
		}
	}

	if len(usable) < minPoints {
		return v
	}

	prices := make([]float64, len(usable))
	for i, s := range usable {
		prices[i] = s.Price
	}

	v.SMA5 = sma(prices, 5)
	v.SMA20 = sma(prices, 20)
	v.SMA60 = sma(prices, 60)
	v.EMA12 = ema(prices, 12)
	v.EMA26 = ema(prices, 26)
	v.RSI14 = rsi(prices, 14)
	v.MACD, v.MACDSignal, v.MACDHistogram = macd(prices)
	v.BollingerUpper, v.BollingerMiddle, v.BollingerLower, v.BollingerPosition = bollinger(prices, 20, 2)
	v.ATR14, v.VolatilityPct = atr(prices, 14)
	v.VolumeRatio, v.VolumeTrend = volumeRatio(usable)
	v.ROC5 = roc(prices, 5)
	v.ROC20 = roc(prices, 20)
	v.ConsecutiveUp, v.ConsecutiveDown = runs(prices)

	v.Score, v.Signal = compositeScore(v, prices)
	return v
}

func fptr(f float64) *float64 { return &f }

// sma averages the n most recent prices.
func sma(prices []float64, n int) *float64 {
	if len(prices) < n {
		return nil
	}
	sum := 0.0
	for _, p := range prices[:n] {
		sum += p
	}
	return fptr(sum / float64(n))
}

// ema seeds with the SMA over the oldest n points, then applies the standard
// recurrence oldest to newest.
func ema(prices []float64, n int) *float64 {
	if len(prices) < n {
		return nil
	}
	chron := chronological(prices)
	seed := 0.0
	for _, p := range chron[:n] {
		seed += p
	}
	value := seed / float64(n)
	k := 2.0 / float64(n+1)
	for _, p := range chron[n:] {
		value = p*k + value*(1-k)
	}
	return fptr(value)
}

// rsi is the Wilder-smoothed relative strength index. Exactly 100 when the
// trailing average loss is zero.
func rsi(prices []float64, period int) *float64 {
	if len(prices) < period+1 {
		return nil
	}
	chron := chronological(prices)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := chron[i] - chron[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(chron); i++ {
		change := chron[i] - chron[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return fptr(100.0)
	}
	rs := avgGain / avgLoss
	return fptr(100.0 - 100.0/(1.0+rs))
}

// macd returns line, signal and histogram. The signal line is approximated:
// a short history of MACD-line values is reconstructed by re-running the
// EMA pair over successive trailing windows, then EMA(9)-smoothed. Close-only
// snapshots make exact parity with charting tools out of reach; see DESIGN.md.
func macd(prices []float64) (line, signal, histogram *float64) {
	e12 := ema(prices, 12)
	e26 := ema(prices, 26)
	if e12 == nil || e26 == nil {
		return nil, nil, nil
	}
	line = fptr(*e12 - *e26)

	// Oldest window first so the EMA runs forward in time.
	var history []float64
	for offset := 8; offset >= 0; offset-- {
		if len(prices)-offset < 26 {
			continue
		}
		w12 := ema(prices[offset:], 12)
		w26 := ema(prices[offset:], 26)
		if w12 != nil && w26 != nil {
			history = append(history, *w12-*w26)
		}
	}

	if len(history) == 0 {
		return line, nil, nil
	}

	sig := emaOfValues(history, 9)
	signal = fptr(sig)
	histogram = fptr(*line - sig)
	return line, signal, histogram
}

// emaOfValues smooths an already-chronological series; with fewer than n
// values it degrades to the plain mean.
func emaOfValues(values []float64, n int) float64 {
	if len(values) < n {
		sum := 0.0
		for _, x := range values {
			sum += x
		}
		return sum / float64(len(values))
	}
	seed := 0.0
	for _, x := range values[:n] {
		seed += x
	}
	value := seed / float64(n)
	k := 2.0 / float64(n+1)
	for _, x := range values[n:] {
		value = x*k + value*(1-k)
	}
	return value
}

func bollinger(prices []float64, n int, width float64) (upper, middle, lower, position *float64) {
	mid := sma(prices, n)
	if mid == nil {
		return nil, nil, nil, nil
	}
	variance := 0.0
	for _, p := range prices[:n] {
		d := p - *mid
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(n))

	up := *mid + width*sd
	lo := *mid - width*sd
	upper, middle, lower = fptr(up), mid, fptr(lo)

	// Position is intentionally unclamped: prices pierce the bands.
	if up != lo {
		position = fptr((prices[0] - lo) / (up - lo))
	}
	return upper, middle, lower, position
}

// atr approximates the true range from close-only data as the absolute
// period-to-period move, seeded with a simple mean then Wilder-smoothed.
func atr(prices []float64, period int) (atrVal, volatilityPct *float64) {
	if len(prices) < period+1 {
		return nil, nil
	}
	chron := chronological(prices)

	trs := make([]float64, 0, len(chron)-1)
	for i := 1; i < len(chron); i++ {
		trs = append(trs, math.Abs(chron[i]-chron[i-1]))
	}

	seed := 0.0
	for _, tr := range trs[:period] {
		seed += tr
	}
	value := seed / float64(period)
	for _, tr := range trs[period:] {
		value = (value*float64(period-1) + tr) / float64(period)
	}

	atrVal = fptr(value)
	if prices[0] > 0 {
		volatilityPct = fptr(value / prices[0] * 100)
	}
	return atrVal, volatilityPct
}

// volumeRatio compares the 5 most recent volumes against the whole window.
func volumeRatio(samples []Sample) (*float64, string) {
	var vols []float64
	for _, s := range samples {
		if s.Volume > 0 {
			vols = append(vols, s.Volume)
		}
	}
	if len(vols) < 5 {
		return nil, ""
	}

	recent := 0.0
	for _, v := range vols[:5] {
		recent += v
	}
	recent /= 5

	all := 0.0
	for _, v := range vols {
		all += v
	}
	all /= float64(len(vols))
	if all == 0 {
		return nil, ""
	}

	ratio := recent / all
	trend := "stable"
	switch {
	case ratio > 1.3:
		trend = "increasing"
	case ratio < 0.7:
		trend = "decreasing"
	}
	return fptr(ratio), trend
}

// roc is the rate of change versus n periods ago, in percent.
func roc(prices []float64, n int) *float64 {
	if len(prices) < n+1 {
		return nil
	}
	base := prices[n]
	if base == 0 {
		return nil
	}
	return fptr((prices[0] - base) / base * 100)
}

// runs counts strictly monotonic adjacent pairs walking back from the most
// recent point, stopping at the first reversal or plateau.
func runs(prices []float64) (up, down int) {
	for i := 0; i+1 < len(prices); i++ {
		if prices[i] > prices[i+1] {
			up++
		} else {
			break
		}
	}
	for i := 0; i+1 < len(prices); i++ {
		if prices[i] < prices[i+1] {
			down++
		} else {
			break
		}
	}
	return up, down
}

func chronological(prices []float64) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[len(prices)-1-i] = p
	}
	return out
}
