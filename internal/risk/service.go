package risk

import (
	"context"
	"fmt"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const (
	DefaultDaysBack = 14
	MaxLimit        = 50
)

// Service ranks the stored ticker universe by risk tier.
type Service struct {
	source   interfaces.RiskDataSource
	daysBack int
}

var _ interfaces.RiskRecommender = (*Service)(nil)

func NewService(source interfaces.RiskDataSource, daysBack int) *Service {
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}
	return &Service{source: source, daysBack: daysBack}
}

// RecommendByLevel returns up to limit symbols in tier. A failing data
// source yields an empty list rather than an error.
func (s *Service) RecommendByLevel(ctx context.Context, tier types.RiskTier, limit int) ([]types.RiskProfile, error) {
	if _, err := types.ParseRiskTier(string(tier)); err != nil {
		return nil, err
	}
	if limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d, got %d: %w", MaxLimit, limit, types.ErrInvalidRequest)
	}

	series, err := s.source.LoadRecentCloses(ctx, s.daysBack)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load closes for risk ranking", err, "days_back", s.daysBack)
		return []types.RiskProfile{}, nil
	}

	profiles := Classify(series)
	ranked := Rank(profiles, tier, limit)

	logger.Debug(ctx, "Risk ranking computed",
		"tier", string(tier),
		"universe", len(profiles),
		"returned", len(ranked),
	)
	return ranked, nil
}
