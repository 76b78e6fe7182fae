package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

type fakePrices struct {
	quote    types.Quote
	quoteErr error
	bars     []types.PriceBar
	histErr  error
}

func (f *fakePrices) Quote(_ context.Context, symbol string) (types.Quote, error) {
	if f.quoteErr != nil {
		return types.Quote{}, f.quoteErr
	}
	q := f.quote
	q.Symbol = symbol
	return q, nil
}

func (f *fakePrices) PriceHistory(_ context.Context, _, _, _ string) ([]types.PriceBar, error) {
	return f.bars, f.histErr
}

type fakeStore struct {
	close float64
	ok    bool
	err   error
}

func (f fakeStore) LatestClose(context.Context, string) (float64, bool, error) {
	return f.close, f.ok, f.err
}

type fakeSentiment struct {
	avg   float64
	count int
}

func (f fakeSentiment) Sentiment(context.Context, string, int) (float64, int) {
	return f.avg, f.count
}

type memJournal struct {
	mu      sync.Mutex
	entries []types.RecommendationResult
}

func (m *memJournal) Append(r types.RecommendationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, r)
	return nil
}

func flatBars(n int, price float64) []types.PriceBar {
	bars := make([]types.PriceBar, n)
	for i := range bars {
		bars[i] = types.PriceBar{Close: price}
	}
	return bars
}

func TestRecommendUsesLiveQuote(t *testing.T) {
	j := &memJournal{}
	e := New(&fakePrices{quote: types.Quote{Price: 100}, bars: flatBars(60, 100)},
		fakeSentiment{avg: 0.3, count: 10},
		WithJournal(j),
	)

	got, err := e.Recommend(context.Background(), "nvda", 7)
	require.NoError(t, err)
	assert.Equal(t, "NVDA", got.Symbol)
	assert.Equal(t, 100.0, got.CurrentPrice)
	assert.Equal(t, 0.0, got.Trend)
	assert.Equal(t, 0.18, got.ExpectedDiff)
	assert.Equal(t, types.StrongBuy, got.Recommendation)
	assert.Equal(t, 10, got.NewsCount)
	require.Len(t, j.entries, 1)
	assert.Equal(t, *got, j.entries[0])
}

func TestRecommendFallsBackToStoredClose(t *testing.T) {
	e := New(&fakePrices{quoteErr: errors.New("timeout"), histErr: errors.New("timeout")},
		fakeSentiment{},
		WithPriceStore(fakeStore{close: 42.5, ok: true}),
	)

	got, err := e.Recommend(context.Background(), "MU", 7)
	require.NoError(t, err)
	assert.Equal(t, 42.5, got.CurrentPrice)
	assert.Equal(t, types.Hold, got.Recommendation)
	assert.Equal(t, 0.2, got.Confidence)
}

func TestRecommendZeroQuoteFallsBack(t *testing.T) {
	e := New(&fakePrices{quote: types.Quote{Price: 0}},
		fakeSentiment{},
		WithPriceStore(fakeStore{close: 10, ok: true}),
	)

	got, err := e.Recommend(context.Background(), "MU", 7)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.CurrentPrice)
}

func TestRecommendNoPriceData(t *testing.T) {
	e := New(&fakePrices{quoteErr: errors.New("down")},
		fakeSentiment{avg: 1, count: 3},
		WithPriceStore(fakeStore{ok: false}),
	)

	_, err := e.Recommend(context.Background(), "zzzz", 7)
	require.Error(t, err)
	var npd *types.NoPriceDataError
	require.ErrorAs(t, err, &npd)
	assert.Equal(t, "ZZZZ", npd.Symbol)
	assert.EqualError(t, err, "no price data for ZZZZ")
}

func TestRecommendValidatesWindow(t *testing.T) {
	e := New(&fakePrices{quote: types.Quote{Price: 1}}, fakeSentiment{})

	for _, w := range []int{0, -1, 61} {
		_, err := e.Recommend(context.Background(), "MU", w)
		assert.ErrorIs(t, err, types.ErrInvalidRequest, "window %d", w)
	}
	_, err := e.Recommend(context.Background(), "  ", 7)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	for _, w := range []int{1, 60} {
		_, err := e.Recommend(context.Background(), "MU", w)
		assert.NoError(t, err, "window %d", w)
	}
}

func TestRecommendTrendFromHistory(t *testing.T) {
	bars := make([]types.PriceBar, 60)
	for i := range bars {
		bars[i] = types.PriceBar{Close: 100 + float64(i)}
	}
	e := New(&fakePrices{quote: types.Quote{Price: 160}, bars: bars}, fakeSentiment{})

	got, err := e.Recommend(context.Background(), "MU", 7)
	require.NoError(t, err)
	assert.Greater(t, got.Trend, 0.0)
	assert.Greater(t, got.TargetPriceMean, got.CurrentPrice)
}
