package storage

import "time"

// PricePoint is one recorded quote snapshot. Append-only; indicator input is
// the most-recent-first window of these rows.
type PricePoint struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Symbol     string    `gorm:"index;not null" json:"symbol"`
	Price      float64   `gorm:"not null" json:"price"`
	Currency   string    `gorm:"not null" json:"currency"`
	RecordedAt time.Time `gorm:"index;not null" json:"recorded_at"`

	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	PreviousClose float64 `json:"previous_close"`
	PE            float64 `gorm:"column:pe" json:"pe"`
	MarketCap     float64 `json:"market_cap"`
	DividendYield float64 `json:"dividend_yield"`
	High52Week    float64 `json:"fifty_two_week_high"`
	Low52Week     float64 `json:"fifty_two_week_low"`
	Volume        float64 `json:"average_volume"`
}

// Position is the single mutable row per symbol. Only the trade executor
// writes it: weighted-average cost on BUY, floor-at-zero shares on SELL.
type Position struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	Symbol        string  `gorm:"uniqueIndex;not null" json:"symbol"`
	Shares        int64   `gorm:"not null;default:0" json:"shares"`
	CostPrice     float64 `json:"cost_price"`
	CostCurrency  string  `json:"cost_currency"`
	CurrentPrice  float64 `json:"current_price"`
	PriceCurrency string  `json:"price_currency"`
}

// Decision is one per cycle per instrument, append-only. Source records which
// path produced it (llm or fallback_rules) and LLMError keeps the original
// failure when the rule path had to take over.
type Decision struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Symbol      string `gorm:"index;not null" json:"symbol"`
	Action      string `gorm:"not null" json:"action"` // BUY, SELL, HOLD
	Confidence  int    `gorm:"not null" json:"confidence"`
	Reasoning   string `gorm:"type:text" json:"reasoning"`
	NewsSummary string `gorm:"type:text" json:"news_summary"`
	MarketData  string `gorm:"type:text" json:"market_data"`
	Source      string `gorm:"not null" json:"source"`
	LLMError    string `gorm:"column:llm_error" json:"llm_error"`
}

// Trade is an executed simulated order, append-only.
type Trade struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Symbol   string  `gorm:"index;not null" json:"symbol"`
	Action   string  `gorm:"not null" json:"action"` // BUY or SELL
	Shares   int64   `gorm:"not null" json:"shares"`
	Price    float64 `gorm:"not null" json:"price"`
	Currency string  `gorm:"not null" json:"currency"`
	Reason   string  `gorm:"type:text" json:"reason"`
}

// CycleSnapshot summarizes one finished decision cycle for the dashboard.
type CycleSnapshot struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TotalValueUSD  float64 `json:"total_value_usd"`
	PositionsCount int     `json:"positions_count"`
	PositionsJSON  string  `gorm:"type:text" json:"positions_json"`
	DecisionsCount int     `json:"decisions_count"`
	TradesCount    int     `json:"trades_count"`
}
