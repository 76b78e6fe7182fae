package engine

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

const (
	MinWindowDays = 1
	MaxWindowDays = 60

	defaultHistoryRange    = "3mo"
	defaultHistoryInterval = "1d"
)

// Engine produces recommendations from live prices, stored closes and news sentiment.
type Engine struct {
	prices    interfaces.PriceProvider
	store     interfaces.PriceStore
	sentiment interfaces.SentimentSource
	journal   interfaces.Journal

	historyRange    string
	historyInterval string
}

var _ interfaces.Recommender = (*Engine)(nil)

type Option func(*Engine)

// WithPriceStore enables the stored-close fallback for the current price.
func WithPriceStore(s interfaces.PriceStore) Option {
	return func(e *Engine) { e.store = s }
}

func WithJournal(j interfaces.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithHistory sets the chart range and interval used for the trend.
func WithHistory(rangeSpec, interval string) Option {
	return func(e *Engine) {
		if rangeSpec != "" {
			e.historyRange = rangeSpec
		}
		if interval != "" {
			e.historyInterval = interval
		}
	}
}

func New(prices interfaces.PriceProvider, sentiment interfaces.SentimentSource, opts ...Option) *Engine {
	e := &Engine{
		prices:          prices,
		sentiment:       sentiment,
		historyRange:    defaultHistoryRange,
		historyInterval: defaultHistoryInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend returns a fresh recommendation for symbol. The only failure
// besides validation is a *types.NoPriceDataError.
func (e *Engine) Recommend(ctx context.Context, symbol string, windowDays int) (*types.RecommendationResult, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil, fmt.Errorf("symbol is required: %w", types.ErrInvalidRequest)
	}
	if windowDays < MinWindowDays || windowDays > MaxWindowDays {
		return nil, fmt.Errorf("window_days must be between %d and %d, got %d: %w",
			MinWindowDays, MaxWindowDays, windowDays, types.ErrInvalidRequest)
	}

	price, err := e.currentPrice(ctx, sym)
	if err != nil {
		return nil, err
	}

	var (
		trend     float64
		avg       float64
		newsCount int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trend = e.trend(gctx, sym)
		return nil
	})
	g.Go(func() error {
		avg, newsCount = e.sentiment.Sentiment(gctx, sym, windowDays)
		return nil
	})
	_ = g.Wait()

	result := Synthesize(Inputs{
		Symbol:       sym,
		CurrentPrice: price,
		SentimentAvg: avg,
		Trend:        trend,
		NewsCount:    newsCount,
		WindowDays:   windowDays,
	})

	logger.Recommendation(ctx, sym, string(result.Recommendation), result.Confidence, result.ExpectedDiff,
		"current_price", result.CurrentPrice,
		"sentiment_avg", result.SentimentAvg,
		"trend", result.Trend,
		"news_count", result.NewsCount,
	)
	if e.journal != nil {
		if err := e.journal.Append(result); err != nil {
			logger.Warn(ctx, "Failed to journal recommendation", "symbol", sym, "error", err)
		}
	}
	return &result, nil
}

// currentPrice prefers a live quote and falls back to the latest stored close.
// Zero is treated as missing.
func (e *Engine) currentPrice(ctx context.Context, sym string) (float64, error) {
	q, err := e.prices.Quote(ctx, sym)
	if err == nil && q.Price > 0 {
		return q.Price, nil
	}
	if err != nil {
		logger.Warn(ctx, "Live quote unavailable, trying stored close", "symbol", sym, "error", err)
	}

	if e.store != nil {
		c, ok, serr := e.store.LatestClose(ctx, sym)
		if serr != nil {
			logger.Warn(ctx, "Stored close lookup failed", "symbol", sym, "error", serr)
		}
		if ok && c > 0 {
			logger.Debug(ctx, "Using stored close as current price", "symbol", sym, "close", c)
			return c, nil
		}
	}
	return 0, &types.NoPriceDataError{Symbol: sym}
}

func (e *Engine) trend(ctx context.Context, sym string) float64 {
	bars, err := e.prices.PriceHistory(ctx, sym, e.historyRange, e.historyInterval)
	if err != nil {
		logger.Warn(ctx, "Price history unavailable, trend set to 0", "symbol", sym, "error", err)
		return 0
	}
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		closes = append(closes, b.Close)
	}
	t := ta.Trend(closes)
	logger.Debug(ctx, "Trend computed", "symbol", sym, "bars", len(bars), "trend", t)
	return t
}
