package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/stock"
	"stock-advisor/internal/types"
)

type symbolNews struct {
	Symbol string           `json:"symbol"`
	News   []types.LiveNews `json:"news"`
}

type riskResponse struct {
	Level      types.RiskTier      `json:"level"`
	Items      []types.RiskProfile `json:"items"`
	RiskModule bool                `json:"risk_module"`
	Error      string              `json:"error,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Stock advisor backend is running!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true, "risk_module": s.cfg.Risk != nil})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	var syms []string
	for _, p := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			syms = append(syms, p)
		}
	}
	if len(syms) == 0 {
		s.writeError(w, http.StatusBadRequest, "No valid symbols")
		return
	}
	daysBack, err := intParam(r, "days_back", 7)
	if err != nil || daysBack < 1 {
		s.writeError(w, http.StatusBadRequest, "days_back must be a positive integer")
		return
	}

	out := make([]symbolNews, len(syms))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(4)
	for i, sym := range syms {
		g.Go(func() error {
			items, _ := s.cfg.News.FetchNews(ctx, sym, s.cfg.NewsLimit, daysBack)
			mu.Lock()
			out[i] = symbolNews{Symbol: sym, News: items}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	sym := strings.ToUpper(chi.URLParam(r, "symbol"))
	items, err := s.cfg.RSS.FetchNews(r.Context(), sym, s.cfg.RSSLimit, 0)
	if err != nil {
		logger.Provider(r.Context(), s.cfg.RSS.Name(), sym, 0, err)
		items = []types.LiveNews{}
	}
	s.writeJSON(w, http.StatusOK, symbolNews{Symbol: sym, News: items})
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	sym := strings.ToUpper(chi.URLParam(r, "symbol"))
	snap, err := s.cfg.Stocks.Snapshot(r.Context(), sym)
	switch {
	case errors.Is(err, stock.ErrNotTracked):
		s.writeError(w, http.StatusBadRequest, "Stock not supported")
	case err != nil:
		logger.ErrorWithErr(r.Context(), "Snapshot failed", err, "symbol", sym)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleRiskRecommend(w http.ResponseWriter, r *http.Request) {
	levelParam := r.URL.Query().Get("level")
	if levelParam == "" {
		levelParam = string(types.RiskLow)
	}
	tier, err := types.ParseRiskTier(levelParam)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "level must be LOW|MEDIUM|HIGH")
		return
	}
	limit, err := intParam(r, "limit", 10)
	if err != nil || limit < 1 || limit > 50 {
		s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
		return
	}

	resp := riskResponse{Level: tier, Items: []types.RiskProfile{}, RiskModule: s.cfg.Risk != nil}
	if s.cfg.Risk == nil {
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	items, err := s.cfg.Risk.RecommendByLevel(r.Context(), tier, limit)
	switch {
	case errors.Is(err, types.ErrInvalidRequest):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		resp.Error = err.Error()
	case items != nil:
		resp.Items = items
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	sym := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if sym == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	window, err := intParam(r, "window_days", s.cfg.WindowDays)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "window_days must be an integer")
		return
	}

	res, err := s.cfg.Recommender.Recommend(r.Context(), sym, window)
	var noPrice *types.NoPriceDataError
	switch {
	case errors.As(err, &noPrice), errors.Is(err, types.ErrInvalidRequest):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, res)
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn(context.Background(), "Failed to encode JSON response", "error", err)
	}
}

// writeError writes {"detail": message}.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"detail": message})
}
