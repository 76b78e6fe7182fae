package stock

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/cache"
	"stock-advisor/internal/types"
)

type fakePrices struct {
	calls    atomic.Int32
	quoteErr error
}

func (f *fakePrices) Quote(_ context.Context, sym string) (types.Quote, error) {
	f.calls.Add(1)
	if f.quoteErr != nil {
		return types.Quote{}, f.quoteErr
	}
	return types.Quote{Symbol: sym, Name: "Micron Technology, Inc.", Price: 101.5}, nil
}

func (f *fakePrices) PriceHistory(_ context.Context, sym, rangeSpec, interval string) ([]types.PriceBar, error) {
	if rangeSpec != HistoryRange || interval != HistoryInterval {
		return nil, errors.New("unexpected range")
	}
	return []types.PriceBar{{Symbol: sym, Time: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100}}, nil
}

type fakeNews []types.LiveNews

func (f fakeNews) FetchNews(_ context.Context, _ string, limit, _ int) ([]types.LiveNews, string) {
	if len(f) == 0 {
		return []types.LiveNews{}, ""
	}
	if limit != NewsLimit {
		return nil, ""
	}
	return f, "NewsAPI"
}

func TestSnapshotRejectsUntracked(t *testing.T) {
	s := NewService(&fakePrices{}, fakeNews{}, nil, []string{"MU"})
	_, err := s.Snapshot(context.Background(), "TSLA")
	assert.ErrorIs(t, err, ErrNotTracked)
}

func TestSnapshotBuildsAndCaches(t *testing.T) {
	prices := &fakePrices{}
	news := fakeNews{{Title: "Micron rallies", Provider: "NewsAPI", Sentiment: types.Positive}}
	s := NewService(prices, news, cache.NewTTL[types.StockSnapshot](time.Minute), []string{"mu", "AMD"})

	snap, err := s.Snapshot(context.Background(), "mu")
	require.NoError(t, err)
	assert.Equal(t, "MU", snap.Symbol)
	assert.Equal(t, "Micron Technology, Inc.", snap.Name)
	assert.Equal(t, 101.5, snap.Price)
	assert.Len(t, snap.History, 1)
	assert.Equal(t, "Micron rallies", snap.News[0].Title)

	_, err = s.Snapshot(context.Background(), "MU")
	require.NoError(t, err)
	assert.Equal(t, int32(1), prices.calls.Load())
	assert.Equal(t, []string{"AMD", "MU"}, s.Tickers())
}

func TestSnapshotPlaceholderNews(t *testing.T) {
	s := NewService(&fakePrices{}, fakeNews{}, nil, []string{"MU"})
	snap, err := s.Snapshot(context.Background(), "MU")
	require.NoError(t, err)
	require.Len(t, snap.News, 1)
	assert.Equal(t, NoNewsTitle, snap.News[0].Title)
	assert.Equal(t, SystemProvider, snap.News[0].Provider)
	assert.Equal(t, types.Neutral, snap.News[0].Sentiment)
}

func TestRefreshFailureKeepsCachedValue(t *testing.T) {
	prices := &fakePrices{}
	s := NewService(prices, fakeNews{}, nil, []string{"MU"})
	_, err := s.Snapshot(context.Background(), "MU")
	require.NoError(t, err)

	prices.quoteErr = errors.New("yahoo down")
	_, err = s.Refresh(context.Background(), "MU")
	require.Error(t, err)

	snap, err := s.Snapshot(context.Background(), "MU")
	require.NoError(t, err)
	assert.Equal(t, 101.5, snap.Price)
}

func TestRefreshAllSkipsFailures(t *testing.T) {
	prices := &fakePrices{quoteErr: errors.New("down")}
	s := NewService(prices, fakeNews{}, nil, []string{"MU", "AMD"})
	assert.Zero(t, s.RefreshAll(context.Background()))

	prices.quoteErr = nil
	assert.Equal(t, 2, s.RefreshAll(context.Background()))
	assert.True(t, s.Tracked("amd"))
}
