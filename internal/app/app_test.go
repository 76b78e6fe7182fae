package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/refresher"
	"stock-advisor/internal/store"
)

func testConfig(t *testing.T) *store.Config {
	t.Helper()
	cfg := store.Defaults()
	cfg.Keys = store.Keys{}
	cfg.Database.Path = filepath.Join(t.TempDir(), "advisor.db")
	cfg.Journal.Dir = filepath.Join(t.TempDir(), "journal")
	return cfg
}

func TestBuildWithoutKeysUsesRSSOnly(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"Yahoo Finance RSS"}, a.Chain.Providers())
	assert.NotNil(t, a.Recommender)
	assert.NotNil(t, a.Pipeline)
	assert.Len(t, a.Stocks.Tickers(), len(store.DefaultTickers))
}

func TestBuildChainOrder(t *testing.T) {
	cfg := testConfig(t)
	cfg.Keys = store.Keys{NewsAPI: "a", MarketAux: "b", AlphaVantage: "c"}
	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"NewsAPI", "MarketAux", "AlphaVantage", "Yahoo Finance RSS"}, a.Chain.Providers())
}

func TestSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ingest.Schedule = "@every 1h"
	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	r := refresher.New()
	defer r.Stop()
	require.NoError(t, a.Schedule(r))

	cfg.Ingest.Schedule = "bogus"
	r2 := refresher.New()
	defer r2.Stop()
	assert.Error(t, a.Schedule(r2))
}
