package market

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pfl-dev/paperfolio/internal/logger"
)

// Fetcher is one quote source. Sources are tried in order until one succeeds.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (*Quote, error)
}

// Client walks a fallback chain of quote sources.
type Client struct {
	fetchers []Fetcher
	logger   *logger.Logger
}

func NewClient(timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		fetchers: []Fetcher{
			newChartFetcher(timeout),
			newSummaryFetcher(timeout),
		},
		logger: log,
	}
}

// GetQuote returns the first quote any source produces, or nil when every
// source fails. A nil quote is a degraded-but-normal outcome for the cycle.
func (c *Client) GetQuote(ctx context.Context, symbol string) *Quote {
	for _, f := range c.fetchers {
		q, err := f.Fetch(ctx, symbol)
		if err != nil {
			c.logger.Debug("quote source failed", "source", f.Name(), "symbol", symbol, "error", err)
			continue
		}
		if q != nil && q.Price > 0 {
			q.Source = f.Name()
			q.FetchedAt = time.Now()
			return q
		}
	}
	c.logger.Warn("all quote sources failed", "symbol", symbol)
	return nil
}

// chartFetcher reads the last close from the Yahoo Finance chart endpoint.
type chartFetcher struct {
	client *resty.Client
}

func newChartFetcher(timeout time.Duration) *chartFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0")
	return &chartFetcher{client: client}
}

func (f *chartFetcher) Name() string { return "chart" }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
				FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *chartFetcher) Fetch(ctx context.Context, symbol string) (*Quote, error) {
	var out chartResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=1d",
			url.PathEscape(symbol)))
	if err != nil {
		return nil, fmt.Errorf("chart fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("chart: status %d", resp.StatusCode())
	}
	if out.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error: %s", out.Chart.Error.Description)
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart: no data returned")
	}

	meta := out.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("chart: no price in response")
	}

	q := &Quote{
		Symbol:           symbol,
		Price:            meta.RegularMarketPrice,
		Currency:         meta.Currency,
		PreviousClose:    meta.PreviousClose,
		FiftyTwoWeekHigh: meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  meta.FiftyTwoWeekLow,
	}
	if q.PreviousClose > 0 {
		q.Change = q.Price - q.PreviousClose
		q.ChangePercent = q.Change / q.PreviousClose * 100
	}
	return q, nil
}

// summaryFetcher reads the quoteSummary endpoint, which also carries
// fundamentals (PE, market cap, dividend yield, average volume).
type summaryFetcher struct {
	client *resty.Client
}

func newSummaryFetcher(timeout time.Duration) *summaryFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0")
	return &summaryFetcher{client: client}
}

func (f *summaryFetcher) Name() string { return "summary" }

type rawValue struct {
	Raw float64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
				PreviousClose      rawValue `json:"regularMarketPreviousClose"`
				Currency           string   `json:"currency"`
				MarketCap          rawValue `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE       rawValue `json:"trailingPE"`
				DividendYield    rawValue `json:"dividendYield"`
				FiftyTwoWeekHigh rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  rawValue `json:"fiftyTwoWeekLow"`
				AverageVolume    rawValue `json:"averageVolume"`
			} `json:"summaryDetail"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

func (f *summaryFetcher) Fetch(ctx context.Context, symbol string) (*Quote, error) {
	var out summaryResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=price,summaryDetail",
			url.PathEscape(symbol)))
	if err != nil {
		return nil, fmt.Errorf("summary fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("summary: status %d", resp.StatusCode())
	}
	if len(out.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("summary: no data returned")
	}

	r := out.QuoteSummary.Result[0]
	if r.Price.RegularMarketPrice.Raw <= 0 {
		return nil, fmt.Errorf("summary: no price in response")
	}

	q := &Quote{
		Symbol:           symbol,
		Price:            r.Price.RegularMarketPrice.Raw,
		Currency:         r.Price.Currency,
		PreviousClose:    r.Price.PreviousClose.Raw,
		PE:               r.SummaryDetail.TrailingPE.Raw,
		MarketCap:        r.Price.MarketCap.Raw,
		DividendYield:    r.SummaryDetail.DividendYield.Raw * 100,
		FiftyTwoWeekHigh: r.SummaryDetail.FiftyTwoWeekHigh.Raw,
		FiftyTwoWeekLow:  r.SummaryDetail.FiftyTwoWeekLow.Raw,
		AverageVolume:    r.SummaryDetail.AverageVolume.Raw,
	}
	if q.PreviousClose > 0 {
		q.Change = q.Price - q.PreviousClose
		q.ChangePercent = q.Change / q.PreviousClose * 100
	}
	return q, nil
}
