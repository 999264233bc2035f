package web

import (
	"encoding/json"
	"net/http"

	"github.com/pfl-dev/paperfolio/internal/fx"
)

type summaryResponse struct {
	TotalValueUSD  float64 `json:"total_value_usd"`
	PositionsCount int     `json:"positions_count"`
	DecisionsCount int     `json:"decisions_count"`
	TradesCount    int     `json:"trades_count"`
	LastCycleAt    string  `json:"last_cycle_at"`
}

type positionView struct {
	Symbol       string  `json:"symbol"`
	Shares       int64   `json:"shares"`
	CostPrice    float64 `json:"cost_price"`
	CurrentPrice float64 `json:"current_price"`
	Currency     string  `json:"currency"`
	PnLPercent   float64 `json:"pnl_percent"`
	ValueUSD     float64 `json:"value_usd"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("paperfolio dashboard API\n\n" +
		"GET /api/summary\nGET /api/positions\nGET /api/decisions\nGET /api/trades\n"))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	resp := summaryResponse{}

	snapshot, err := s.repo.GetLatestSnapshot()
	if err != nil {
		s.logger.Error("load snapshot", "error", err)
	}
	if snapshot != nil {
		resp.TotalValueUSD = snapshot.TotalValueUSD
		resp.PositionsCount = snapshot.PositionsCount
		resp.DecisionsCount = snapshot.DecisionsCount
		resp.TradesCount = snapshot.TradesCount
		resp.LastCycleAt = snapshot.CreatedAt.Format("2006-01-02 15:04:05")
	}

	s.writeJSON(w, resp)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.repo.GetAllPositions()
	if err != nil {
		http.Error(w, "failed to load positions", http.StatusInternalServerError)
		return
	}

	views := make([]positionView, 0, len(positions))
	for _, p := range positions {
		view := positionView{
			Symbol:       p.Symbol,
			Shares:       p.Shares,
			CostPrice:    p.CostPrice,
			CurrentPrice: p.CurrentPrice,
			Currency:     p.PriceCurrency,
			ValueUSD:     fx.ToUSD(p.CurrentPrice*float64(p.Shares), p.PriceCurrency),
		}
		if p.CostPrice > 0 {
			view.PnLPercent = (p.CurrentPrice - p.CostPrice) / p.CostPrice * 100
		}
		views = append(views, view)
	}

	s.writeJSON(w, views)
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := s.repo.GetLatestDecisions(50)
	if err != nil {
		http.Error(w, "failed to load decisions", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, decisions)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.repo.GetRecentTrades(50)
	if err != nil {
		http.Error(w, "failed to load trades", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, trades)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}
