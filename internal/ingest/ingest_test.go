package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/database"
	"stock-advisor/internal/sentiment"
	"stock-advisor/internal/types"
)

type fakePrices struct {
	bars map[string][]types.PriceBar
	fail map[string]bool
}

func (f *fakePrices) Quote(_ context.Context, sym string) (types.Quote, error) {
	return types.Quote{Symbol: sym, Name: sym + " Inc"}, nil
}

func (f *fakePrices) PriceHistory(_ context.Context, sym, rangeSpec, interval string) ([]types.PriceBar, error) {
	if rangeSpec != BarRange || interval != BarInterval {
		return nil, fmt.Errorf("unexpected %s/%s", rangeSpec, interval)
	}
	if f.fail[sym] {
		return nil, errors.New("chart down")
	}
	return f.bars[sym], nil
}

type fakeHeadlines map[string][]types.NewsItem

func (f fakeHeadlines) Headlines(_ context.Context, sym string, limit int) ([]types.NewsItem, error) {
	items := f[sym]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

type stubEnricher struct{ summary string }

func (s stubEnricher) Enrich(_ context.Context, items []types.NewsItem) []types.NewsItem {
	out := make([]types.NewsItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Summary == "" {
			out[i].Summary = s.summary
		}
	}
	return out
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	base := time.Date(2025, 5, 5, 14, 0, 0, 0, time.UTC)
	published := base.Add(-time.Hour)
	prices := &fakePrices{
		bars: map[string][]types.PriceBar{
			"MU": {{Time: base, Close: 90}, {Time: base.Add(time.Hour), Close: 91}},
		},
		fail: map[string]bool{"AMD": true},
	}
	headlines := fakeHeadlines{
		"MU": {
			{Title: "Micron beats estimates", URL: "u1", PublishedAt: &published},
			{Title: "", URL: "u2", PublishedAt: &published},
			{Title: "Micron shares", URL: "u3", PublishedAt: &published},
		},
		"AMD": {{Title: "AMD update", URL: "a1", PublishedAt: &published}},
	}

	p := New(prices, headlines, sentiment.NewLexicon(), db,
		WithEnricher(stubEnricher{summary: "stock plunges after weak guidance"}),
		WithConcurrency(2))
	results, err := p.Run(ctx, []string{"mu", "AMD"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "MU", results[0].Symbol)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Prices)
	assert.Equal(t, 2, results[0].News)

	assert.Equal(t, "AMD", results[1].Symbol)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 1, results[1].News)

	last, ok, err := db.LatestClose(ctx, "MU")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 91.0, last)

	news, err := db.QueryNews(ctx, "MU", published.Add(-time.Minute), published.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, news, 2)
	for _, n := range news {
		require.NotNil(t, n.Sentiment)
		assert.Equal(t, "stock plunges after weak guidance", n.Summary)
	}

	// second run adds nothing new
	results, err = p.Run(ctx, []string{"MU"})
	require.NoError(t, err)
	assert.Zero(t, results[0].Prices)
	assert.Zero(t, results[0].News)
}

func TestPipelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	db, err := database.Open(context.Background(), database.MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	p := New(&fakePrices{}, fakeHeadlines{}, sentiment.NewLexicon(), db)
	_, err = p.Run(ctx, []string{"MU"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnricherScrapesArticleBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/article":
			fmt.Fprint(w, `<html><body><article>
				<p>Micron reported record quarterly revenue driven by AI demand.</p>
				<p>short</p>
				<p>Shares rose in extended trading after the announcement.</p>
			</article></body></html>`)
		case "/meta":
			fmt.Fprint(w, `<html><head><meta name="description" content="Chipmaker guidance lifted"></head><body></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e := NewEnricher(time.Second)
	e.delay = 0

	body := e.Summary(context.Background(), srv.URL+"/article")
	assert.True(t, strings.HasPrefix(body, "Micron reported record quarterly revenue"))
	assert.Contains(t, body, "Shares rose in extended trading")
	assert.NotContains(t, body, "short")

	assert.Equal(t, "Chipmaker guidance lifted", e.Summary(context.Background(), srv.URL+"/meta"))
	assert.Empty(t, e.Summary(context.Background(), srv.URL+"/missing"))

	long := strings.Repeat("already long enough summary ", 10)
	items := e.Enrich(context.Background(), []types.NewsItem{
		{Title: "a", URL: srv.URL + "/meta"},
		{Title: "b", URL: srv.URL + "/article", Summary: long},
		{Title: "c"},
	})
	assert.Equal(t, "Chipmaker guidance lifted", items[0].Summary)
	assert.Equal(t, long, items[1].Summary)
	assert.Empty(t, items[2].Summary)
}
