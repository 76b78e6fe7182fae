package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

type fakeSource struct {
	series   map[string][]float64
	err      error
	daysBack int
}

func (f *fakeSource) LoadRecentCloses(_ context.Context, daysBack int) (map[string][]float64, error) {
	f.daysBack = daysBack
	return f.series, f.err
}

func TestRecommendByLevel(t *testing.T) {
	src := &fakeSource{series: map[string][]float64{
		"FLAT":  {100, 100, 100, 100},
		"ZIG":   {100, 102, 100, 102},
		"CRASH": {100, 80, 60, 40},
	}}
	svc := NewService(src, 0)

	got, err := svc.RecommendByLevel(context.Background(), types.RiskHigh, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CRASH", got[0].Symbol)
	assert.Equal(t, DefaultDaysBack, src.daysBack)
}

func TestRecommendByLevelValidation(t *testing.T) {
	svc := NewService(&fakeSource{}, 14)

	_, err := svc.RecommendByLevel(context.Background(), types.RiskTier("EXTREME"), 10)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = svc.RecommendByLevel(context.Background(), types.RiskLow, 0)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = svc.RecommendByLevel(context.Background(), types.RiskLow, 51)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestRecommendByLevelDegradesOnSourceError(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("db locked")}, 14)

	got, err := svc.RecommendByLevel(context.Background(), types.RiskLow, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommendByLevelEmptyUniverse(t *testing.T) {
	svc := NewService(&fakeSource{series: map[string][]float64{}}, 14)

	got, err := svc.RecommendByLevel(context.Background(), types.RiskMedium, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
