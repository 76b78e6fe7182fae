package news

import (
	"context"
	"math"
	"strings"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

const DefaultLiveLimit = 10

// Aggregator computes mean news sentiment, preferring pre-scored stored
// articles and falling back to live providers.
type Aggregator struct {
	store     interfaces.NewsStore
	chain     *Chain
	liveLimit int
	now       func() time.Time
}

var _ interfaces.SentimentSource = (*Aggregator)(nil)

type AggregatorOption func(*Aggregator)

func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) { a.now = now }
}

func WithLiveLimit(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.liveLimit = n
		}
	}
}

// NewAggregator accepts a nil store, in which case only live news is used.
func NewAggregator(store interfaces.NewsStore, chain *Chain, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		store:     store,
		chain:     chain,
		liveLimit: DefaultLiveLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sentiment returns the average score in [-1, 1] and the article count.
// Any stored match wins over live news even if its scores are all missing.
func (a *Aggregator) Sentiment(ctx context.Context, symbol string, windowDays int) (float64, int) {
	sym := strings.ToUpper(symbol)
	now := a.now().UTC()
	since := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	if avg, n := a.historical(ctx, sym, since, now); n > 0 {
		logger.Debug(ctx, "Using stored news sentiment", "symbol", sym, "count", n, "avg", avg)
		return avg, n
	}

	if a.chain == nil {
		return 0, 0
	}
	items, provider := a.chain.FetchNews(ctx, sym, a.liveLimit, windowDays)
	if len(items) == 0 {
		logger.Info(ctx, "No news found for symbol", "symbol", sym, "window_days", windowDays)
		return 0, 0
	}

	scores := make([]float64, len(items))
	for i, it := range items {
		scores[i] = types.LabelScore(string(it.Sentiment))
	}
	avg := ta.Mean(scores)
	logger.Debug(ctx, "Using live news sentiment", "symbol", sym, "provider", provider, "count", len(items), "avg", avg)
	return avg, len(items)
}

func (a *Aggregator) historical(ctx context.Context, sym string, since, until time.Time) (float64, int) {
	if a.store == nil {
		return 0, 0
	}
	rows, err := a.store.QueryNews(ctx, sym, since, until)
	if err != nil {
		logger.Warn(ctx, "Stored news query failed, falling back to live news", "symbol", sym, "error", err)
		return 0, 0
	}
	if len(rows) == 0 {
		return 0, 0
	}

	scores := make([]float64, len(rows))
	for i, r := range rows {
		if r.Sentiment != nil && !math.IsNaN(*r.Sentiment) && !math.IsInf(*r.Sentiment, 0) {
			scores[i] = *r.Sentiment
		}
	}
	return ta.Mean(scores), len(rows)
}
