package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

type Recommender interface {
	Recommend(ctx context.Context, symbol string, windowDays int) (*types.RecommendationResult, error)
}

type RiskRecommender interface {
	RecommendByLevel(ctx context.Context, tier types.RiskTier, limit int) ([]types.RiskProfile, error)
}

// Journal records served recommendations.
type Journal interface {
	Append(result types.RecommendationResult) error
}
