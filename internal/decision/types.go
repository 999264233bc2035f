package decision

import (
	"time"

	"github.com/pfl-dev/paperfolio/internal/indicators"
	"github.com/pfl-dev/paperfolio/internal/risk"
	"github.com/pfl-dev/paperfolio/internal/sentiment"
)

type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

const (
	SourceLLM   = "llm"
	SourceRules = "fallback_rules"
)

// Decision is the outcome for one symbol in one cycle.
type Decision struct {
	Symbol     string `json:"symbol"`
	Action     Action `json:"action"`
	Confidence int    `json:"confidence"` // [0,100]
	Reasoning  string `json:"reasoning"`
	Source     string `json:"source"`    // llm or fallback_rules
	LLMError   string `json:"llm_error"` // set when the model path fell through
}

// PositionState is the ledger view the decision needs.
type PositionState struct {
	Shares       int64   `json:"shares"`
	CostPrice    float64 `json:"cost_price"`
	CostCurrency string  `json:"cost_currency"`
	PnLPercent   float64 `json:"pnl_percent"`
}

// PriorDecision is a bounded slice element of recent history, given to the
// model and the rule engine for continuity (anti flip-flopping).
type PriorDecision struct {
	Action     Action    `json:"action"`
	Confidence int       `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// Thresholds are the per-symbol bands the rule engine thresholds against.
type Thresholds struct {
	Buy  float64
	Sell float64

	// RebalanceOnly restricts BUYs to the first RebalanceWindowDays days of
	// each calendar month.
	RebalanceOnly       bool
	RebalanceWindowDays int
}

// DefaultThresholds apply when an instrument carries no overrides.
var DefaultThresholds = Thresholds{Buy: 20, Sell: -20}

// Context is the sole input to decision-making: one immutable composition of
// quote, position, sentiment, technicals and risk state.
type Context struct {
	Symbol   string
	Currency string
	Price    float64

	Change        float64
	ChangePercent float64
	PE            float64
	DividendYield float64

	Position  PositionState
	Sentiment sentiment.Result
	News      string
	Technical *indicators.Vector
	Risk      risk.Flags

	// RecentPrices is a bounded most-recent-first window.
	RecentPrices   []float64
	PriorDecisions []PriorDecision

	TechnicalSummary string
	Thresholds       Thresholds
	Now              time.Time
}
