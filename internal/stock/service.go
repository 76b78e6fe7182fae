package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"stock-advisor/internal/cache"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const (
	HistoryRange    = "2mo"
	HistoryInterval = "1d"
	NewsLimit       = 20
	NewsDaysBack    = 7
	SystemProvider  = "System"
	NoNewsTitle     = "No recent news"
)

var ErrNotTracked = errors.New("stock not supported")

// NewsFetcher is the live provider chain.
type NewsFetcher interface {
	FetchNews(ctx context.Context, symbol string, limit, daysBack int) ([]types.LiveNews, string)
}

// Service builds and caches stock detail snapshots for the tracked tickers.
type Service struct {
	prices  interfaces.PriceProvider
	news    NewsFetcher
	cache   *cache.TTL[types.StockSnapshot]
	tracked map[string]bool
}

func NewService(prices interfaces.PriceProvider, news NewsFetcher, snapshots *cache.TTL[types.StockSnapshot], tickers []string) *Service {
	if snapshots == nil {
		snapshots = cache.NewTTL[types.StockSnapshot](cache.DefaultTTL)
	}
	tracked := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		tracked[strings.ToUpper(strings.TrimSpace(t))] = true
	}
	return &Service{prices: prices, news: news, cache: snapshots, tracked: tracked}
}

// Tickers returns the tracked universe in alphabetical order.
func (s *Service) Tickers() []string {
	out := make([]string, 0, len(s.tracked))
	for t := range s.tracked {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s *Service) Tracked(symbol string) bool {
	return s.tracked[strings.ToUpper(strings.TrimSpace(symbol))]
}

// Snapshot returns the cached snapshot for symbol or builds a fresh one.
func (s *Service) Snapshot(ctx context.Context, symbol string) (types.StockSnapshot, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if !s.tracked[sym] {
		return types.StockSnapshot{}, fmt.Errorf("%w: %s", ErrNotTracked, sym)
	}
	if snap, ok := s.cache.Get(sym); ok {
		return snap, nil
	}
	return s.Refresh(ctx, sym)
}

// Refresh rebuilds the snapshot for symbol and stores it in the cache.
// A failed build leaves any cached value untouched.
func (s *Service) Refresh(ctx context.Context, symbol string) (types.StockSnapshot, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if !s.tracked[sym] {
		return types.StockSnapshot{}, fmt.Errorf("%w: %s", ErrNotTracked, sym)
	}

	var (
		quote   types.Quote
		history []types.PriceBar
		items   []types.LiveNews
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = s.prices.Quote(gctx, sym)
		if err != nil {
			return fmt.Errorf("quote: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.prices.PriceHistory(gctx, sym, HistoryRange, HistoryInterval)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		items, _ = s.news.FetchNews(gctx, sym, NewsLimit, NewsDaysBack)
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.StockSnapshot{}, fmt.Errorf("snapshot %s: %w", sym, err)
	}

	if len(items) == 0 {
		items = []types.LiveNews{{
			Title:     NoNewsTitle,
			Sentiment: types.Neutral,
			Provider:  SystemProvider,
		}}
	}
	if history == nil {
		history = []types.PriceBar{}
	}
	name := quote.Name
	if name == "" {
		name = sym
	}

	snap := types.StockSnapshot{
		Symbol:  sym,
		Name:    name,
		Price:   quote.Price,
		History: history,
		News:    items,
	}
	s.cache.Set(sym, snap)
	return snap, nil
}

// RefreshAll rebuilds every tracked snapshot, skipping symbols that fail.
// It returns the number refreshed.
func (s *Service) RefreshAll(ctx context.Context) int {
	refreshed := 0
	for _, sym := range s.Tickers() {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.Refresh(ctx, sym); err != nil {
			logger.Warn(ctx, "Snapshot refresh failed", "symbol", sym, "error", err)
			continue
		}
		refreshed++
	}
	removed := s.cache.Cleanup()
	logger.Info(ctx, "Snapshots refreshed", "refreshed", refreshed, "tracked", len(s.tracked), "evicted", removed)
	return refreshed
}
