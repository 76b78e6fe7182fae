package ta

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	FastSpan = 10
	SlowSpan = 20
)

// EMA is the recursive exponential moving average with alpha = 2/(span+1)
// seeded with the first value.
func EMA(values []float64, span int) []float64 {
	if len(values) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Trend is the relative gap between the fast and slow EMA at the last close.
// Empty or non-finite input yields 0.
func Trend(closes []float64) float64 {
	if len(closes) == 0 || !allFinite(closes) {
		return 0
	}
	fast := EMA(closes, FastSpan)
	slow := EMA(closes, SlowSpan)
	f, s := fast[len(fast)-1], slow[len(slow)-1]
	t := (f - s) / math.Max(s, 1e-9)
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	return t
}

func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// PopStdDev is the population standard deviation, 0 for fewer than two points.
func PopStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return stat.PopStdDev(vals, nil)
}

// MaxDrawdown returns the deepest close/runningMax - 1, a value <= 0.
func MaxDrawdown(closes []float64) float64 {
	mdd := 0.0
	peak := math.Inf(-1)
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak <= 0 {
			continue
		}
		if dd := c/peak - 1; dd < mdd {
			mdd = dd
		}
	}
	return mdd
}

// TrailingReturn compares the last close with the close n observations back
// (counting the last one). It is nil when there are fewer than n closes.
func TrailingReturn(closes []float64, n int) *float64 {
	if n <= 0 || len(closes) < n {
		return nil
	}
	base := closes[len(closes)-n]
	if base == 0 {
		return nil
	}
	r := (closes[len(closes)-1] - base) / base
	return &r
}

// Quantile interpolates linearly between the closest ranks of sorted at
// position (n-1)*p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := float64(n-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

func allFinite(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
