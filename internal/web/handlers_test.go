package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfl-dev/paperfolio/internal/config"
	"github.com/pfl-dev/paperfolio/internal/logger"
	"github.com/pfl-dev/paperfolio/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Repository) {
	t.Helper()
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	repo := storage.NewRepository(db)

	cfg := &config.Config{Web: config.WebConfig{Port: 0}}
	return NewServer(repo, cfg, logger.New("error")), repo
}

func TestHandleSummary_Empty(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleSummary(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.TotalValueUSD)
	assert.Empty(t, resp.LastCycleAt)
}

func TestHandleSummary_LatestSnapshot(t *testing.T) {
	s, repo := newTestServer(t)
	require.NoError(t, repo.SaveSnapshot(&storage.CycleSnapshot{
		TotalValueUSD: 12345, PositionsCount: 2, DecisionsCount: 3, TradesCount: 1,
	}))

	rec := httptest.NewRecorder()
	s.handleSummary(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 12345, resp.TotalValueUSD, 1e-9)
	assert.Equal(t, 2, resp.PositionsCount)
	assert.NotEmpty(t, resp.LastCycleAt)
}

func TestHandlePositions(t *testing.T) {
	s, repo := newTestServer(t)
	require.NoError(t, repo.SavePosition(&storage.Position{
		Symbol: "9988.HK", Shares: 100, CostPrice: 80,
		CurrentPrice: 88, CostCurrency: "HKD", PriceCurrency: "HKD",
	}))

	rec := httptest.NewRecorder()
	s.handlePositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var views []positionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "9988.HK", views[0].Symbol)
	assert.InDelta(t, 10, views[0].PnLPercent, 1e-9)
	assert.InDelta(t, 88*100*0.128, views[0].ValueUSD, 1e-9)
}

func TestHandleDecisionsAndTrades(t *testing.T) {
	s, repo := newTestServer(t)
	require.NoError(t, repo.SaveDecision(&storage.Decision{
		Symbol: "AAPL", Action: "HOLD", Confidence: 55, Source: "fallback_rules",
	}))
	require.NoError(t, repo.SaveTrade(&storage.Trade{
		Symbol: "AAPL", Action: "BUY", Shares: 10, Price: 100, Currency: "USD",
	}))

	rec := httptest.NewRecorder()
	s.handleDecisions(rec, httptest.NewRequest(http.MethodGet, "/api/decisions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var decisions []storage.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decisions))
	assert.Len(t, decisions, 1)

	rec = httptest.NewRecorder()
	s.handleTrades(rec, httptest.NewRequest(http.MethodGet, "/api/trades", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var trades []storage.Trade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trades))
	assert.Len(t, trades, 1)
}

func TestHandleIndex_NotFoundOnOtherPaths(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
