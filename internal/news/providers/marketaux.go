package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"stock-advisor/internal/api"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const marketAuxBase = "https://api.marketaux.com"

// MarketAux queries the marketaux news/all endpoint filtered to the symbol's entities.
type MarketAux struct {
	client *api.Client
	key    string
	scorer interfaces.SentimentScorer
	now    func() time.Time
}

var _ interfaces.NewsProvider = (*MarketAux)(nil)

func NewMarketAux(cfg Config, scorer interfaces.SentimentScorer) *MarketAux {
	return &MarketAux{
		client: newClient(cfg, marketAuxBase),
		key:    cfg.APIKey,
		scorer: scorer,
		now:    time.Now,
	}
}

func (m *MarketAux) Name() string { return "MarketAux" }

type marketAuxResponse struct {
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
		Source      string `json:"source"`
		ImageURL    string `json:"image_url"`
	} `json:"data"`
}

func (m *MarketAux) FetchNews(ctx context.Context, symbol string, limit, daysBack int) ([]types.LiveNews, error) {
	if m.key == "" {
		return nil, errors.New("marketaux: api token not configured")
	}
	end := m.now().UTC()
	start := end.AddDate(0, 0, -daysBack)
	const ts = "2006-01-02T15:04:05"

	resp, err := m.client.GET(ctx, "/v1/news/all", url.Values{
		"symbols":          {symbol},
		"language":         {"en"},
		"limit":            {strconv.Itoa(limit)},
		"filter_entities":  {"true"},
		"published_after":  {start.Format(ts)},
		"published_before": {end.Format(ts)},
		"api_token":        {m.key},
	})
	if err != nil {
		return nil, fmt.Errorf("marketaux: %w", err)
	}

	var body marketAuxResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, fmt.Errorf("marketaux: %w", err)
	}
	if len(body.Data) == 0 {
		return []types.LiveNews{}, nil
	}

	titles := make([]string, len(body.Data))
	for i, a := range body.Data {
		titles[i] = a.Title
	}
	labels := labelTitles(ctx, m.scorer, titles)

	out := make([]types.LiveNews, 0, len(body.Data))
	for i, a := range body.Data {
		out = append(out, types.LiveNews{
			Title:     firstNonEmpty(a.Title, "Untitled"),
			Link:      a.URL,
			Date:      formatDate(a.PublishedAt, ts),
			Sentiment: labels[i],
			Provider:  firstNonEmpty(a.Source, m.Name()),
			Image:     a.ImageURL,
		})
	}
	return out, nil
}
