package market

import "time"

// Quote is a best-effort current snapshot with optional fundamentals.
// Optional fields are zero when the source does not provide them.
type Quote struct {
	Symbol        string
	Price         float64
	Currency      string
	Change        float64
	ChangePercent float64
	PreviousClose float64

	PE               float64
	MarketCap        float64
	DividendYield    float64
	FiftyTwoWeekHigh float64
	FiftyTwoWeekLow  float64
	AverageVolume    float64

	FetchedAt time.Time
	Source    string
}
