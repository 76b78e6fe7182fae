package engine

import (
	"math"

	"github.com/shopspring/decimal"

	"stock-advisor/internal/types"
)

const (
	sentimentWeight = 0.6
	trendWeight     = 0.4
	maxExpectedDiff = 0.30
	bandWidth       = 0.10
	newsSaturation  = 10.0
)

// Inputs are the signals combined into one recommendation.
type Inputs struct {
	Symbol       string
	CurrentPrice float64
	SentimentAvg float64
	Trend        float64
	NewsCount    int
	WindowDays   int
}

// Synthesize blends sentiment and trend into an expected move, derives a
// ±10% target band around the mean and labels the result. Label and
// confidence use the unrounded values; only the returned fields are rounded.
func Synthesize(in Inputs) types.RecommendationResult {
	s := finiteOr0(in.SentimentAvg)
	t := finiteOr0(in.Trend)

	ed := clamp(sentimentWeight*s+trendWeight*t, -maxExpectedDiff, maxExpectedDiff)

	mean := in.CurrentPrice * (1 + ed)
	high := mean * (1 + bandWidth)
	low := mean * (1 - bandWidth)

	return types.RecommendationResult{
		Symbol:          in.Symbol,
		CurrentPrice:    round(in.CurrentPrice, 2),
		TargetPriceMean: round(mean, 2),
		TargetPriceHigh: round(high, 2),
		TargetPriceLow:  round(low, 2),
		SentimentAvg:    round(s, 3),
		Trend:           round(t, 3),
		ExpectedDiff:    round(ed, 3),
		Recommendation:  Label(s, ed),
		Confidence:      round(Confidence(in.NewsCount, ed), 2),
		WindowDays:      in.WindowDays,
		NewsCount:       in.NewsCount,
	}
}

// Label applies the rules in order; the first match wins. Without news the
// label depends on ed alone, so trend by itself reaches at most Buy or Sell.
func Label(sentiment, ed float64) types.Recommendation {
	switch {
	case sentiment >= 0.25 && ed >= 0.12:
		return types.StrongBuy
	case sentiment >= 0.10 && ed >= 0.05:
		return types.Buy
	case ed > -0.05 && ed < 0.05:
		return types.Hold
	case sentiment <= -0.10 && ed <= -0.05:
		return types.Sell
	case ed > 0.05:
		return types.Buy
	case ed < -0.05:
		return types.Sell
	default:
		return types.Hold
	}
}

// Confidence saturates at ten articles and grows with the size of the move.
func Confidence(newsCount int, ed float64) float64 {
	newsFactor := math.Min(1, float64(newsCount)/newsSaturation)
	strength := math.Min(1, math.Abs(ed))
	return math.Min(1, 0.2+0.6*newsFactor+0.2*strength)
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finiteOr0(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
