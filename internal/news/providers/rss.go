package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const (
	yahooRSSBase     = "https://feeds.finance.yahoo.com/rss/2.0/headline"
	YahooRSSProvider = "Yahoo Finance RSS"
)

// YahooRSS reads the Yahoo Finance headline feed. Items carry no sentiment
// and are labelled Neutral.
type YahooRSS struct {
	baseURL string
	parser  *gofeed.Parser
	now     func() time.Time
}

var _ interfaces.NewsProvider = (*YahooRSS)(nil)

func NewYahooRSS(baseURL string, timeout time.Duration) *YahooRSS {
	if baseURL == "" {
		baseURL = yahooRSSBase
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "Mozilla/5.0 (compatible; stock-advisor/1.0)"
	return &YahooRSS{baseURL: baseURL, parser: parser, now: time.Now}
}

func (y *YahooRSS) Name() string { return YahooRSSProvider }

func (y *YahooRSS) FetchNews(ctx context.Context, symbol string, limit, _ int) ([]types.LiveNews, error) {
	items, err := y.fetch(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	out := make([]types.LiveNews, 0, len(items))
	for _, item := range items {
		out = append(out, types.LiveNews{
			Title:     cleanHTML(item.Title),
			Link:      item.Link,
			Date:      y.itemDate(item),
			Sentiment: types.Neutral,
			Provider:  YahooRSSProvider,
		})
	}
	return out, nil
}

// Headlines returns feed items with summaries and parsed timestamps for ingestion.
func (y *YahooRSS) Headlines(ctx context.Context, symbol string, limit int) ([]types.NewsItem, error) {
	items, err := y.fetch(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.NewsItem, 0, len(items))
	for _, item := range items {
		n := types.NewsItem{
			Symbol:  symbol,
			Tickers: symbol,
			Title:   cleanHTML(item.Title),
			Summary: cleanHTML(item.Description),
			URL:     item.Link,
		}
		if item.PublishedParsed != nil {
			t := item.PublishedParsed.UTC()
			n.PublishedAt = &t
		}
		out = append(out, n)
	}
	return out, nil
}

func (y *YahooRSS) fetch(ctx context.Context, symbol string, limit int) ([]*gofeed.Item, error) {
	q := url.Values{"s": {symbol}, "region": {"US"}, "lang": {"en-US"}}
	feed, err := y.parser.ParseURLWithContext(y.baseURL+"?"+q.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("yahoo rss %s: %w", symbol, err)
	}
	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (y *YahooRSS) itemDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(DateLayout)
	}
	if s := strings.TrimSpace(item.Published); s != "" {
		return s
	}
	return y.now().UTC().Format(DateLayout)
}
