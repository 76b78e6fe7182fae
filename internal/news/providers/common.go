package providers

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"stock-advisor/internal/api"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/sentiment"
	"stock-advisor/internal/types"
)

const (
	DateLayout  = "2006-01-02 15:04"
	UnknownDate = "Unknown"
)

// Config is shared by the JSON news providers.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
}

func newClient(cfg Config, fallbackBase string) *api.Client {
	base := cfg.BaseURL
	if base == "" {
		base = fallbackBase
	}
	opts := []api.ClientOption{
		api.WithBaseURL(strings.TrimRight(base, "/")),
		api.WithRetry(api.DefaultRetryConfig()),
		api.WithLogging(true),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.Timeout))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, api.WithRateLimit(cfg.RateLimit, 1))
	}
	return api.NewClient(opts...)
}

// formatDate parses raw with the first matching layout and renders it as
// DateLayout. Unparseable input yields UnknownDate.
func formatDate(raw string, layouts ...string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UnknownDate
	}
	for _, layout := range layouts {
		n := len(layout)
		if len(raw) < n {
			n = len(raw)
		}
		if t, err := time.Parse(layout, raw[:n]); err == nil {
			return t.Format(DateLayout)
		}
	}
	return UnknownDate
}

// labelTitles scores titles in one batch; scorer failures become Neutral.
func labelTitles(ctx context.Context, scorer interfaces.SentimentScorer, titles []string) []types.SentimentLabel {
	return sentiment.LabelAll(ctx, scorer, titles)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// cleanHTML strips markup from feed text.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
