package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const (
	articleSelector = "article, div.caas-body, div.article-body, div.content-body, div.story-content"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Enricher fills in short or missing article summaries by scraping the
// article page.
type Enricher struct {
	timeout time.Duration
	minLen  int
	delay   time.Duration
}

func NewEnricher(timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Enricher{timeout: timeout, minLen: 100, delay: 500 * time.Millisecond}
}

// Enrich returns a copy of items with summaries shorter than the minimum
// replaced by scraped article text, when any was found.
func (e *Enricher) Enrich(ctx context.Context, items []types.NewsItem) []types.NewsItem {
	out := make([]types.NewsItem, len(items))
	copy(out, items)

	for i := range out {
		if len(strings.TrimSpace(out[i].Summary)) >= e.minLen || out[i].URL == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if text := e.Summary(ctx, out[i].URL); text != "" {
			out[i].Summary = text
		}
		select {
		case <-ctx.Done():
		case <-time.After(e.delay):
		}
	}
	return out
}

// Summary fetches articleURL and returns its body paragraphs, falling back
// to the page's meta description. Failures return "".
func (e *Enricher) Summary(ctx context.Context, articleURL string) string {
	c := colly.NewCollector(colly.StdlibContext(ctx), colly.UserAgent(userAgent))
	c.SetRequestTimeout(e.timeout)

	var (
		paragraphs  []string
		description string
	)
	c.OnHTML(articleSelector, func(el *colly.HTMLElement) {
		el.ForEach("p", func(_ int, p *colly.HTMLElement) {
			text := strings.Join(strings.Fields(p.Text), " ")
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
	})
	c.OnHTML(`meta[name="description"], meta[property="og:description"]`, func(el *colly.HTMLElement) {
		if description == "" {
			description = strings.TrimSpace(el.Attr("content"))
		}
	})

	if err := c.Visit(articleURL); err != nil {
		logger.Debug(ctx, "Article fetch failed", "url", articleURL, "error", err)
		return ""
	}
	c.Wait()

	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n")
	}
	return description
}
