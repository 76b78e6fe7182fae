package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/sentiment"
	"stock-advisor/internal/types"
)

const (
	BarRange    = "7d"
	BarInterval = "1h"
)

type HeadlineSource interface {
	Headlines(ctx context.Context, symbol string, limit int) ([]types.NewsItem, error)
}

type SummaryFetcher interface {
	Enrich(ctx context.Context, items []types.NewsItem) []types.NewsItem
}

// Sink persists ingested data.
type Sink interface {
	UpsertStock(ctx context.Context, symbol, name string, at time.Time) error
	InsertPrices(ctx context.Context, bars []types.PriceBar) (int, error)
	InsertNews(ctx context.Context, items []types.NewsItem) (int, error)
}

// Result summarises one ticker's ingestion.
type Result struct {
	Symbol string `json:"symbol"`
	Prices int    `json:"prices"`
	News   int    `json:"news"`
	Err    error  `json:"-"`
}

type Pipeline struct {
	prices      interfaces.PriceProvider
	headlines   HeadlineSource
	enricher    SummaryFetcher
	scorer      interfaces.SentimentScorer
	sink        Sink
	newsLimit   int
	concurrency int
	now         func() time.Time
}

type Option func(*Pipeline)

func WithEnricher(e SummaryFetcher) Option { return func(p *Pipeline) { p.enricher = e } }

func WithNewsLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.newsLimit = n
		}
	}
}

func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

func New(prices interfaces.PriceProvider, headlines HeadlineSource, scorer interfaces.SentimentScorer, sink Sink, opts ...Option) *Pipeline {
	p := &Pipeline{
		prices:      prices,
		headlines:   headlines,
		scorer:      scorer,
		sink:        sink,
		newsLimit:   20,
		concurrency: 4,
		now:         time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run ingests every ticker. A failing ticker is reported in its Result and
// does not stop the others; Run itself only fails when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, tickers []string) ([]Result, error) {
	timer := logger.StartOperation(ctx, "ingest.Run", "tickers", len(tickers))

	results := make([]Result, len(tickers))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, t := range tickers {
		g.Go(func() error {
			r := p.ingest(gctx, strings.ToUpper(strings.TrimSpace(t)))
			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		timer.EndWithError(err)
		return results, err
	}

	var prices, news, failed int
	for _, r := range results {
		prices += r.Prices
		news += r.News
		if r.Err != nil {
			failed++
		}
	}
	timer.End("prices", prices, "news", news, "failed", failed)
	return results, nil
}

func (p *Pipeline) ingest(ctx context.Context, sym string) Result {
	res := Result{Symbol: sym}

	name := sym
	if q, err := p.prices.Quote(ctx, sym); err == nil && q.Name != "" {
		name = q.Name
	}
	if err := p.sink.UpsertStock(ctx, sym, name, p.now()); err != nil {
		res.Err = err
		logger.ErrorWithErr(ctx, "Stock upsert failed", err, "symbol", sym)
		return res
	}

	bars, err := p.prices.PriceHistory(ctx, sym, BarRange, BarInterval)
	if err != nil {
		res.Err = fmt.Errorf("prices: %w", err)
		logger.Warn(ctx, "Price fetch failed", "symbol", sym, "error", err)
	} else {
		for i := range bars {
			bars[i].Symbol = sym
		}
		if res.Prices, err = p.sink.InsertPrices(ctx, bars); err != nil {
			res.Err = err
			logger.ErrorWithErr(ctx, "Price insert failed", err, "symbol", sym)
		}
	}

	items, err := p.news(ctx, sym)
	if err != nil {
		if res.Err == nil {
			res.Err = fmt.Errorf("news: %w", err)
		}
		logger.Warn(ctx, "News fetch failed", "symbol", sym, "error", err)
		return res
	}
	if res.News, err = p.sink.InsertNews(ctx, items); err != nil && res.Err == nil {
		res.Err = err
		logger.ErrorWithErr(ctx, "News insert failed", err, "symbol", sym)
	}

	logger.Info(ctx, "Ingested ticker", "symbol", sym, "prices", res.Prices, "news", res.News)
	return res
}

// news fetches, enriches and scores headlines. Items without a title are dropped.
func (p *Pipeline) news(ctx context.Context, sym string) ([]types.NewsItem, error) {
	raw, err := p.headlines.Headlines(ctx, sym, p.newsLimit)
	if err != nil {
		return nil, err
	}
	items := make([]types.NewsItem, 0, len(raw))
	for _, it := range raw {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		it.Symbol = sym
		if it.Tickers == "" {
			it.Tickers = sym
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, nil
	}
	if p.enricher != nil {
		items = p.enricher.Enrich(ctx, items)
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = strings.TrimSpace(it.Title + ". " + it.Summary)
	}
	labels := sentiment.LabelAll(ctx, p.scorer, texts)
	for i := range items {
		s := types.LabelScore(string(labels[i]))
		items[i].Sentiment = &s
	}
	return items, nil
}
