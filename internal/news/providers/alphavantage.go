package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"stock-advisor/internal/api"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const alphaVantageBase = "https://www.alphavantage.co"

// AlphaVantage reads the NEWS_SENTIMENT feed. The feed has no date filter so
// daysBack is ignored; results are capped to limit.
type AlphaVantage struct {
	client *api.Client
	key    string
	scorer interfaces.SentimentScorer
}

var _ interfaces.NewsProvider = (*AlphaVantage)(nil)

func NewAlphaVantage(cfg Config, scorer interfaces.SentimentScorer) *AlphaVantage {
	return &AlphaVantage{
		client: newClient(cfg, alphaVantageBase),
		key:    cfg.APIKey,
		scorer: scorer,
	}
}

func (a *AlphaVantage) Name() string { return "AlphaVantage" }

type alphaVantageResponse struct {
	Note        string `json:"Note"`
	Information string `json:"Information"`
	Feed        []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		TimePublished string `json:"time_published"`
		Source        string `json:"source"`
		BannerImage   string `json:"banner_image"`
	} `json:"feed"`
}

func (a *AlphaVantage) FetchNews(ctx context.Context, symbol string, limit, _ int) ([]types.LiveNews, error) {
	if a.key == "" {
		return nil, errors.New("alphavantage: api key not configured")
	}

	resp, err := a.client.GET(ctx, "/query", url.Values{
		"function": {"NEWS_SENTIMENT"},
		"tickers":  {symbol},
		"apikey":   {a.key},
	})
	if err != nil {
		return nil, fmt.Errorf("alphavantage: %w", err)
	}

	var body alphaVantageResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, fmt.Errorf("alphavantage: %w", err)
	}
	if len(body.Feed) == 0 {
		// throttled responses come back as 200 with a Note/Information field
		if msg := firstNonEmpty(body.Note, body.Information); msg != "" {
			return nil, fmt.Errorf("alphavantage: %s", msg)
		}
		return []types.LiveNews{}, nil
	}

	feed := body.Feed[:0:0]
	for _, item := range body.Feed {
		if strings.TrimSpace(item.Title) != "" {
			feed = append(feed, item)
		}
	}
	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}

	titles := make([]string, len(feed))
	for i, item := range feed {
		titles[i] = item.Title
	}
	labels := labelTitles(ctx, a.scorer, titles)

	out := make([]types.LiveNews, 0, len(feed))
	for i, item := range feed {
		out = append(out, types.LiveNews{
			Title:     item.Title,
			Link:      item.URL,
			Date:      formatDate(item.TimePublished, "20060102T150405"),
			Sentiment: labels[i],
			Provider:  firstNonEmpty(item.Source, a.Name()),
			Image:     item.BannerImage,
		})
	}
	return out, nil
}
