// Package engine runs the decision cycle: one instrument fully processed at
// a time, quote to news to context to decision to trade.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pfl-dev/paperfolio/internal/config"
	"github.com/pfl-dev/paperfolio/internal/decision"
	"github.com/pfl-dev/paperfolio/internal/fx"
	"github.com/pfl-dev/paperfolio/internal/indicators"
	"github.com/pfl-dev/paperfolio/internal/logger"
	"github.com/pfl-dev/paperfolio/internal/market"
	"github.com/pfl-dev/paperfolio/internal/risk"
	"github.com/pfl-dev/paperfolio/internal/sentiment"
	"github.com/pfl-dev/paperfolio/internal/storage"
	"github.com/pfl-dev/paperfolio/internal/trading"
)

const (
	priorDecisionsLimit = 5
	recentPricesLimit   = 20
	newsPlaceholder     = "No recent news available."
)

// Store is the data-store collaborator contract the cycle depends on.
type Store interface {
	SavePricePoint(*storage.PricePoint) error
	GetPriceHistory(symbol string, limit int) ([]storage.PricePoint, error)
	LastPricePoint(symbol string) (*storage.PricePoint, error)
	GetPosition(symbol string) (*storage.Position, error)
	SavePosition(*storage.Position) error
	SaveDecision(*storage.Decision) error
	GetRecentDecisions(symbol string, limit int) ([]storage.Decision, error)
	LastDecisionTime(symbol string) (time.Time, error)
	SaveTrade(*storage.Trade) error
	CountTradesToday(symbol string) (int, error)
	GetAllPositions() ([]storage.Position, error)
	SaveSnapshot(*storage.CycleSnapshot) error
}

// QuoteProvider is the best-effort quote collaborator; nil means every
// source failed.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) *market.Quote
}

type NewsProvider interface {
	Search(ctx context.Context, symbol string) (string, error)
}

type Notifier interface {
	NotifyTrade(t *storage.Trade)
	NotifyError(context string, err error)
}

// Result aggregates one finished cycle.
type Result struct {
	Decisions []storage.Decision
	Trades    []storage.Trade
}

type Engine struct {
	cfg      *config.Config
	store    Store
	quotes   QuoteProvider
	news     NewsProvider
	policy   *decision.Policy
	notifier Notifier
	logger   *logger.Logger

	running atomic.Bool
}

func New(cfg *config.Config, store Store, quotes QuoteProvider, news NewsProvider,
	policy *decision.Policy, notifier Notifier, log *logger.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    store,
		quotes:   quotes,
		news:     news,
		policy:   policy,
		notifier: notifier,
		logger:   log,
	}
}

// RunCycle processes the given symbols sequentially. A second call while one
// is in flight returns an error instead of interleaving. No single symbol's
// failure stops the rest.
func (e *Engine) RunCycle(ctx context.Context, symbols []string, autoTrade bool) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("decision cycle already running")
	}
	defer e.running.Store(false)

	e.logger.Info("decision cycle started", "symbols", len(symbols), "auto_trade", autoTrade)
	result := &Result{}

	for _, symbol := range symbols {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("panic processing symbol", "symbol", symbol, "panic", fmt.Sprint(r))
					if e.notifier != nil {
						e.notifier.NotifyError("cycle "+symbol, fmt.Errorf("%v", r))
					}
				}
			}()

			dec, trade := e.processSymbol(ctx, symbol, autoTrade)
			if dec != nil {
				result.Decisions = append(result.Decisions, *dec)
			}
			if trade != nil {
				result.Trades = append(result.Trades, *trade)
			}
		}()
	}

	e.saveSnapshot(result)
	e.logger.Info("decision cycle completed",
		"decisions", len(result.Decisions), "trades", len(result.Trades))
	return result, nil
}

func (e *Engine) processSymbol(ctx context.Context, symbol string, autoTrade bool) (*storage.Decision, *storage.Trade) {
	inst := e.cfg.Instrument(symbol)

	quote := e.fetchQuote(ctx, symbol, inst)
	if quote == nil {
		e.logger.Warn("no price available, skipping symbol", "symbol", symbol)
		return nil, nil
	}

	newsText, err := e.news.Search(ctx, symbol)
	if err != nil {
		e.logger.Warn("news search failed, using placeholder", "symbol", symbol, "error", err)
		newsText = newsPlaceholder
	}
	sent := sentiment.Score(newsText)

	history, err := e.store.GetPriceHistory(symbol, e.cfg.Trading.HistoryLimit)
	if err != nil {
		e.logger.Error("load price history", "symbol", symbol, "error", err)
	}
	samples := make([]indicators.Sample, len(history))
	for i, pp := range history {
		samples[i] = indicators.Sample{Price: pp.Price, Volume: pp.Volume}
	}
	vector := indicators.Calculate(samples, quote.Price, quote.FiftyTwoWeekHigh, quote.FiftyTwoWeekLow)

	pos, err := e.store.GetPosition(symbol)
	if err != nil {
		e.logger.Error("load position", "symbol", symbol, "error", err)
		pos = &storage.Position{Symbol: symbol}
	}

	lastDecisionAt, err := e.store.LastDecisionTime(symbol)
	if err != nil {
		e.logger.Error("load last decision time", "symbol", symbol, "error", err)
	}
	tradesToday, err := e.store.CountTradesToday(symbol)
	if err != nil {
		e.logger.Error("count trades today", "symbol", symbol, "error", err)
	}

	now := time.Now()
	flags := risk.Evaluate(risk.Input{
		Price:          quote.Price,
		Currency:       quote.Currency,
		CostPrice:      pos.CostPrice,
		Shares:         pos.Shares,
		LastDecisionAt: lastDecisionAt,
		TradesToday:    tradesToday,
		Now:            now,
	}, risk.Limits{
		StopLossPct:    e.cfg.Trading.StopLossPct,
		MaxPositionUSD: e.cfg.Trading.MaxPositionUSD,
		Cooldown:       e.cfg.Cooldown(),
		DailyLimit:     e.cfg.Trading.DailyTradeLimit,
	})

	dc := e.buildContext(symbol, quote, pos, sent, newsText, vector, flags, history, now, inst)

	d := e.policy.Decide(ctx, dc)
	e.logger.Info("decision made", "symbol", symbol, "action", d.Action,
		"confidence", d.Confidence, "source", d.Source)

	record := e.recordDecision(d, newsText, quote, vector)

	trade := e.maybeTrade(d, dc, pos, quote, flags, inst, autoTrade)
	return record, trade
}

// fetchQuote degrades to the last persisted price when every live source
// fails; a fresh quote is persisted as a new price point.
func (e *Engine) fetchQuote(ctx context.Context, symbol string, inst *config.Instrument) *market.Quote {
	quote := e.quotes.GetQuote(ctx, symbol)
	if quote != nil {
		currency := quote.Currency
		if currency == "" && inst != nil {
			currency = inst.Currency
			quote.Currency = currency
		}
		pp := &storage.PricePoint{
			Symbol:        symbol,
			Price:         quote.Price,
			Currency:      currency,
			RecordedAt:    quote.FetchedAt,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
			PreviousClose: quote.PreviousClose,
			PE:            quote.PE,
			MarketCap:     quote.MarketCap,
			DividendYield: quote.DividendYield,
			High52Week:    quote.FiftyTwoWeekHigh,
			Low52Week:     quote.FiftyTwoWeekLow,
			Volume:        quote.AverageVolume,
		}
		if err := e.store.SavePricePoint(pp); err != nil {
			e.logger.Error("save price point", "symbol", symbol, "error", err)
		}
		return quote
	}

	last, err := e.store.LastPricePoint(symbol)
	if err != nil || last == nil {
		return nil
	}
	e.logger.Warn("quote fetch failed, using last persisted price",
		"symbol", symbol, "price", last.Price, "recorded_at", last.RecordedAt)
	return &market.Quote{
		Symbol:           symbol,
		Price:            last.Price,
		Currency:         last.Currency,
		PE:               last.PE,
		DividendYield:    last.DividendYield,
		FiftyTwoWeekHigh: last.High52Week,
		FiftyTwoWeekLow:  last.Low52Week,
		AverageVolume:    last.Volume,
		FetchedAt:        last.RecordedAt,
		Source:           "stale",
	}
}

func (e *Engine) buildContext(symbol string, quote *market.Quote, pos *storage.Position,
	sent sentiment.Result, newsText string, vector *indicators.Vector, flags risk.Flags,
	history []storage.PricePoint, now time.Time, inst *config.Instrument) *decision.Context {

	recentPrices := make([]float64, 0, recentPricesLimit)
	for _, pp := range history {
		if len(recentPrices) == recentPricesLimit {
			break
		}
		recentPrices = append(recentPrices, pp.Price)
	}

	var priors []decision.PriorDecision
	if rows, err := e.store.GetRecentDecisions(symbol, priorDecisionsLimit); err == nil {
		for _, row := range rows {
			priors = append(priors, decision.PriorDecision{
				Action:     decision.Action(row.Action),
				Confidence: row.Confidence,
				CreatedAt:  row.CreatedAt,
			})
		}
	}

	thresholds := decision.DefaultThresholds
	if inst != nil {
		if inst.BuyThreshold != nil {
			thresholds.Buy = *inst.BuyThreshold
		}
		if inst.SellThreshold != nil {
			thresholds.Sell = *inst.SellThreshold
		}
		thresholds.RebalanceOnly = inst.RebalanceOnly
		thresholds.RebalanceWindowDays = inst.RebalanceWindowDays
	}

	return &decision.Context{
		Symbol:        symbol,
		Currency:      quote.Currency,
		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		PE:            quote.PE,
		DividendYield: quote.DividendYield,
		Position: decision.PositionState{
			Shares:       pos.Shares,
			CostPrice:    pos.CostPrice,
			CostCurrency: pos.CostCurrency,
			PnLPercent:   flags.PnLPercent,
		},
		Sentiment:        sent,
		News:             newsText,
		Technical:        vector,
		Risk:             flags,
		RecentPrices:     recentPrices,
		PriorDecisions:   priors,
		TechnicalSummary: indicators.Summary(vector, quote.Price),
		Thresholds:       thresholds,
		Now:              now,
	}
}

func (e *Engine) recordDecision(d *decision.Decision, newsText string,
	quote *market.Quote, vector *indicators.Vector) *storage.Decision {

	marketData, _ := json.Marshal(struct {
		Quote      *market.Quote      `json:"quote"`
		Indicators *indicators.Vector `json:"indicators"`
	}{quote, vector})

	if len(newsText) > 2000 {
		newsText = newsText[:2000]
	}

	record := &storage.Decision{
		Symbol:      d.Symbol,
		Action:      string(d.Action),
		Confidence:  d.Confidence,
		Reasoning:   d.Reasoning,
		NewsSummary: newsText,
		MarketData:  string(marketData),
		Source:      d.Source,
		LLMError:    d.LLMError,
	}
	if err := e.store.SaveDecision(record); err != nil {
		e.logger.Error("save decision", "symbol", d.Symbol, "error", err)
	}
	return record
}

// maybeTrade applies the risk gates and, when they pass, sizes and executes
// the simulated trade. Gate blocks are normal skips with a reason, never
// errors.
func (e *Engine) maybeTrade(d *decision.Decision, dc *decision.Context, pos *storage.Position,
	quote *market.Quote, flags risk.Flags, inst *config.Instrument, autoTrade bool) *storage.Trade {

	if !autoTrade || d.Action == decision.Hold {
		return nil
	}

	if flags.DailyTradeCount >= flags.DailyTradeLimit {
		e.logger.Info("trade skipped", "symbol", d.Symbol, "reason", "daily_limit_reached",
			"count", flags.DailyTradeCount, "limit", flags.DailyTradeLimit)
		return nil
	}
	if flags.CooldownActive {
		e.logger.Info("trade skipped", "symbol", d.Symbol, "reason", "cooldown_active")
		return nil
	}
	if d.Action == decision.Buy && flags.MaxPositionReached {
		e.logger.Info("trade skipped", "symbol", d.Symbol, "reason", "max_position_reached")
		return nil
	}

	params := trading.SizeParams{
		SizeCap: e.cfg.Trading.BuySizeCap,
		MinLot:  e.cfg.Trading.MinLot,
	}
	if inst != nil {
		params.FixedNotional = inst.FixedNotionalUSD
	}

	qty := trading.Size(d.Action, d.Confidence, quote.Price, pos.Shares, params)
	if qty <= 0 {
		e.logger.Info("trade skipped", "symbol", d.Symbol, "reason", "zero_size",
			"action", d.Action, "shares", pos.Shares)
		return nil
	}

	trade := trading.Execute(d, pos, qty, quote.Price, quote.Currency)
	if trade == nil {
		return nil
	}

	if err := e.store.SavePosition(pos); err != nil {
		e.logger.Error("save position", "symbol", d.Symbol, "error", err)
	}
	if err := e.store.SaveTrade(trade); err != nil {
		e.logger.Error("save trade", "symbol", d.Symbol, "error", err)
	}
	if e.notifier != nil {
		e.notifier.NotifyTrade(trade)
	}

	e.logger.Info("trade executed", "symbol", d.Symbol, "action", d.Action,
		"shares", qty, "price", quote.Price, "currency", quote.Currency)
	return trade
}

func (e *Engine) saveSnapshot(result *Result) {
	positions, err := e.store.GetAllPositions()
	if err != nil {
		e.logger.Error("load positions for snapshot", "error", err)
		return
	}

	total := 0.0
	for _, p := range positions {
		price := p.CurrentPrice
		if price <= 0 {
			price = p.CostPrice
		}
		total += fx.ToUSD(price*float64(p.Shares), p.PriceCurrency)
	}

	positionsJSON, _ := json.Marshal(positions)
	snapshot := &storage.CycleSnapshot{
		TotalValueUSD:  total,
		PositionsCount: len(positions),
		PositionsJSON:  string(positionsJSON),
		DecisionsCount: len(result.Decisions),
		TradesCount:    len(result.Trades),
	}
	if err := e.store.SaveSnapshot(snapshot); err != nil {
		e.logger.Error("save cycle snapshot", "error", err)
	}
}
