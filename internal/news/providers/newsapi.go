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

const newsAPIBase = "https://newsapi.org"

// NewsAPI queries the newsapi.org everything endpoint.
type NewsAPI struct {
	client *api.Client
	key    string
	scorer interfaces.SentimentScorer
	now    func() time.Time
}

var _ interfaces.NewsProvider = (*NewsAPI)(nil)

func NewNewsAPI(cfg Config, scorer interfaces.SentimentScorer) *NewsAPI {
	return &NewsAPI{
		client: newClient(cfg, newsAPIBase),
		key:    cfg.APIKey,
		scorer: scorer,
		now:    time.Now,
	}
}

func (n *NewsAPI) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		URLToImage  string `json:"urlToImage"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (n *NewsAPI) FetchNews(ctx context.Context, symbol string, limit, daysBack int) ([]types.LiveNews, error) {
	if n.key == "" {
		return nil, errors.New("newsapi: api key not configured")
	}
	end := n.now().UTC()
	start := end.AddDate(0, 0, -daysBack)

	resp, err := n.client.GET(ctx, "/v2/everything", url.Values{
		"q":        {symbol},
		"pageSize": {strconv.Itoa(limit)},
		"sortBy":   {"publishedAt"},
		"language": {"en"},
		"from":     {start.Format("2006-01-02")},
		"to":       {end.Format("2006-01-02")},
		"apiKey":   {n.key},
	})
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}

	var body newsAPIResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("newsapi: status %q: %s", body.Status, body.Message)
	}
	if len(body.Articles) == 0 {
		return []types.LiveNews{}, nil
	}

	titles := make([]string, len(body.Articles))
	for i, a := range body.Articles {
		titles[i] = a.Title
	}
	labels := labelTitles(ctx, n.scorer, titles)

	out := make([]types.LiveNews, 0, len(body.Articles))
	for i, a := range body.Articles {
		out = append(out, types.LiveNews{
			Title:     firstNonEmpty(a.Title, "Untitled"),
			Link:      a.URL,
			Date:      formatDate(a.PublishedAt, "2006-01-02T15:04:05"),
			Sentiment: labels[i],
			Provider:  firstNonEmpty(a.Source.Name, n.Name()),
			Image:     a.URLToImage,
		})
	}
	return out, nil
}
