package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"stock-advisor/internal/types"
)

func TestSynthesizeNeutralInputs(t *testing.T) {
	got := Synthesize(Inputs{Symbol: "MU", CurrentPrice: 100, WindowDays: 7})

	assert.Equal(t, 0.0, got.ExpectedDiff)
	assert.Equal(t, 100.0, got.TargetPriceMean)
	assert.Equal(t, 110.0, got.TargetPriceHigh)
	assert.Equal(t, 90.0, got.TargetPriceLow)
	assert.Equal(t, types.Hold, got.Recommendation)
	assert.Equal(t, 0.2, got.Confidence)
	assert.Equal(t, 7, got.WindowDays)
	assert.Equal(t, 0, got.NewsCount)
}

func TestSynthesizeStrongBuy(t *testing.T) {
	got := Synthesize(Inputs{Symbol: "NVDA", CurrentPrice: 200, SentimentAvg: 0.3, Trend: 0.2, NewsCount: 10, WindowDays: 7})

	assert.Equal(t, 0.26, got.ExpectedDiff)
	assert.Equal(t, types.StrongBuy, got.Recommendation)
	assert.Equal(t, 252.0, got.TargetPriceMean)
	assert.Equal(t, 277.2, got.TargetPriceHigh)
	assert.Equal(t, 226.8, got.TargetPriceLow)
	assert.Equal(t, 0.85, got.Confidence)
}

func TestSynthesizeClampsExpectedDiff(t *testing.T) {
	up := Synthesize(Inputs{CurrentPrice: 10, SentimentAvg: 1, Trend: 1, NewsCount: 3})
	assert.Equal(t, 0.3, up.ExpectedDiff)
	assert.Equal(t, 13.0, up.TargetPriceMean)

	down := Synthesize(Inputs{CurrentPrice: 10, SentimentAvg: -1, Trend: -0.5, NewsCount: 3})
	assert.Equal(t, -0.3, down.ExpectedDiff)
	assert.Equal(t, types.Sell, down.Recommendation)
}

func TestSynthesizeTrendOnlyIsCappedAtBuy(t *testing.T) {
	got := Synthesize(Inputs{CurrentPrice: 50, Trend: 0.5})
	assert.Equal(t, 0.2, got.ExpectedDiff)
	assert.Equal(t, types.Buy, got.Recommendation)
	assert.Equal(t, 0.24, got.Confidence)
}

func TestLabelRules(t *testing.T) {
	tests := []struct {
		name      string
		sentiment float64
		ed        float64
		want      types.Recommendation
	}{
		{"strong buy", 0.25, 0.12, types.StrongBuy},
		{"buy with sentiment", 0.10, 0.05, types.Buy},
		{"hold band", 0.9, 0.049, types.Hold},
		{"sell with sentiment", -0.10, -0.05, types.Sell},
		{"trend buy", 0.0, 0.06, types.Buy},
		{"trend sell", 0.3, -0.06, types.Sell},
		{"edge hold", 0.0, 0.05, types.Hold},
		{"edge hold negative", 0.0, -0.05, types.Hold},
		{"conflicting hold", 0.1, -0.02, types.Hold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.sentiment, tt.ed))
		})
	}
}

func TestConfidence(t *testing.T) {
	assert.InDelta(t, 0.2, Confidence(0, 0), 1e-12)
	assert.InDelta(t, 0.5, Confidence(5, 0), 1e-12)
	assert.InDelta(t, 0.86, Confidence(25, 0.3), 1e-12)
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 2.68, round(2.675, 2))
	assert.Equal(t, -0.001, round(-0.0005, 3))
	assert.Equal(t, 123.46, round(123.456, 2))
}

func TestSynthesizeInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		in := Inputs{
			Symbol:       "X",
			CurrentPrice: 1 + r.Float64()*1000,
			SentimentAvg: r.Float64()*2 - 1,
			Trend:        r.Float64()*2 - 1,
			NewsCount:    r.Intn(40),
			WindowDays:   1 + r.Intn(60),
		}
		got := Synthesize(in)

		assert.LessOrEqual(t, got.TargetPriceLow, got.TargetPriceMean)
		assert.LessOrEqual(t, got.TargetPriceMean, got.TargetPriceHigh)
		assert.GreaterOrEqual(t, got.ExpectedDiff, -0.3)
		assert.LessOrEqual(t, got.ExpectedDiff, 0.3)
		assert.GreaterOrEqual(t, got.Confidence, 0.2)
		assert.LessOrEqual(t, got.Confidence, 1.0)
		assert.Equal(t, got, Synthesize(in))
	}
}
