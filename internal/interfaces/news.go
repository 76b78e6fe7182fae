package interfaces

import (
	"context"
	"time"

	"stock-advisor/internal/types"
)

// NewsStore queries ingested articles whose tickers field mentions symbol
// and whose publication time falls within [since, until].
type NewsStore interface {
	QueryNews(ctx context.Context, symbol string, since, until time.Time) ([]types.NewsItem, error)
}

// NewsProvider is one live news source in the fallback chain.
type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context, symbol string, limit, daysBack int) ([]types.LiveNews, error)
}

// SentimentScorer classifies a batch of texts. The returned slice has the
// same length and order as texts.
type SentimentScorer interface {
	ScoreBatch(ctx context.Context, texts []string) ([]types.SentimentLabel, error)
}

// SentimentSource produces the mean sentiment and article count for a
// symbol over the trailing window.
type SentimentSource interface {
	Sentiment(ctx context.Context, symbol string, windowDays int) (avg float64, count int)
}
