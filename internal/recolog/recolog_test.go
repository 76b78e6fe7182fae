package recolog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

func newTestJournal(t *testing.T, now time.Time) *Journal {
	t.Helper()
	j := New(t.TempDir())
	j.now = func() time.Time { return now }
	return j
}

func TestAppendAndRead(t *testing.T) {
	day := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)
	j := newTestJournal(t, day)

	require.NoError(t, j.Append(types.RecommendationResult{Symbol: "MU", Recommendation: types.Buy, Confidence: 0.71}))
	require.NoError(t, j.Append(types.RecommendationResult{Symbol: "AMD", Recommendation: types.Hold}))

	assert.FileExists(t, filepath.Join(j.Dir(), "2025-04-01.jsonl"))

	got, err := j.Read(day)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MU", got[0].Symbol)
	assert.Equal(t, types.Buy, got[0].Recommendation)
	assert.Equal(t, 0.71, got[0].Confidence)
	assert.Equal(t, "2025-04-01T09:30:00Z", got[0].Time)
	assert.Equal(t, "AMD", got[1].Symbol)
}

func TestReadMissingDay(t *testing.T) {
	j := newTestJournal(t, time.Now())
	got, err := j.Read(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompressOlder(t *testing.T) {
	old := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	today := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	j := newTestJournal(t, old)
	require.NoError(t, j.Append(types.RecommendationResult{Symbol: "NVDA"}))
	j.now = func() time.Time { return today }
	require.NoError(t, j.Append(types.RecommendationResult{Symbol: "MSFT"}))

	n, err := j.CompressOlder(7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(filepath.Join(j.Dir(), "2025-03-01.jsonl"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(j.Dir(), "2025-03-01.jsonl.gz"))
	assert.FileExists(t, filepath.Join(j.Dir(), "2025-04-01.jsonl"))

	got, err := j.Read(old)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NVDA", got[0].Symbol)

	n, err = j.CompressOlder(7)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCompressOlderDisabled(t *testing.T) {
	j := newTestJournal(t, time.Now())
	n, err := j.CompressOlder(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSummarize(t *testing.T) {
	day := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	j := newTestJournal(t, day)
	for _, r := range []types.RecommendationResult{
		{Symbol: "MU", Recommendation: types.Buy, Confidence: 0.6, ExpectedDiff: 0.1, CurrentPrice: 90},
		{Symbol: "MU", Recommendation: types.Hold, Confidence: 0.8, ExpectedDiff: 0.0, CurrentPrice: 91},
		{Symbol: "AMD", Recommendation: types.Sell, Confidence: 0.5, ExpectedDiff: -0.2, CurrentPrice: 150},
	} {
		require.NoError(t, j.Append(r))
	}

	path, err := j.Summarize(day)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "symbol,requests,strong_buy,buy,hold,sell,avg_confidence,avg_expected_diff,last_price,last_recommendation\n" +
		"AMD,1,0,0,0,1,0.50,-0.200,150.00,Sell\n" +
		"MU,2,0,1,1,0,0.70,0.050,91.00,Hold\n" +
		"TOTAL,3,,,,,,,,\n"
	assert.Equal(t, want, string(b))

	path, err = j.Summarize(day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, path)
}
