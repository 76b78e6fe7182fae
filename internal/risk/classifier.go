package risk

import (
	"math"
	"sort"

	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

const (
	volatilityWeight = 0.6
	drawdownWeight   = 0.4
	lowQuantile      = 0.33
	highQuantile     = 0.66
	trailingWindow   = 30
)

// Classify computes a risk profile per symbol and assigns tiers relative to
// the whole universe. Closes must be ordered oldest first. Symbols without a
// single finite positive close are left out. Output is sorted by symbol.
func Classify(series map[string][]float64) []types.RiskProfile {
	profiles := make([]types.RiskProfile, 0, len(series))
	for sym, raw := range series {
		closes := validCloses(raw)
		if len(closes) == 0 {
			continue
		}
		vol := ta.PopStdDev(ta.Returns(closes))
		mdd := ta.MaxDrawdown(closes)
		profiles = append(profiles, types.RiskProfile{
			Symbol:      sym,
			RiskScore:   volatilityWeight*vol + drawdownWeight*(-mdd),
			Volatility:  vol,
			MaxDrawdown: mdd,
			Ret30:       ta.TrailingReturn(closes, trailingWindow),
		})
	}
	if len(profiles) == 0 {
		return profiles
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Symbol < profiles[j].Symbol })

	lo, hi := thresholds(profiles)
	for i := range profiles {
		profiles[i].RiskLabel = tierFor(profiles[i].RiskScore, lo, hi)
	}
	return profiles
}

func thresholds(profiles []types.RiskProfile) (float64, float64) {
	scores := make([]float64, len(profiles))
	for i, p := range profiles {
		scores[i] = p.RiskScore
	}
	sort.Float64s(scores)
	if len(scores) >= 3 {
		return ta.Quantile(scores, lowQuantile), ta.Quantile(scores, highQuantile)
	}
	return scores[0], scores[len(scores)-1]
}

func tierFor(score, lo, hi float64) types.RiskTier {
	switch {
	case score <= lo:
		return types.RiskLow
	case score >= hi:
		return types.RiskHigh
	default:
		return types.RiskMedium
	}
}

// Rank filters profiles to tier and orders them by 30-observation return
// (missing last), then risk score, then symbol.
func Rank(profiles []types.RiskProfile, tier types.RiskTier, limit int) []types.RiskProfile {
	out := make([]types.RiskProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.RiskLabel == tier {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Ret30 != nil && b.Ret30 == nil:
			return true
		case a.Ret30 == nil && b.Ret30 != nil:
			return false
		case a.Ret30 != nil && *a.Ret30 != *b.Ret30:
			return *a.Ret30 > *b.Ret30
		case a.RiskScore != b.RiskScore:
			return a.RiskScore > b.RiskScore
		default:
			return a.Symbol < b.Symbol
		}
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func validCloses(raw []float64) []float64 {
	out := make([]float64, 0, len(raw))
	for _, c := range raw {
		if c > 0 && !math.IsInf(c, 0) && !math.IsNaN(c) {
			out = append(out, c)
		}
	}
	return out
}
