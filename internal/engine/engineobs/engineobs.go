package engineobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

type observableEngine struct {
	engine interfaces.Recommender
}

var _ interfaces.Recommender = (*observableEngine)(nil)

func Wrap(eng interfaces.Recommender) interfaces.Recommender {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Recommend(ctx context.Context, symbol string, windowDays int) (*types.RecommendationResult, error) {
	ctx, span := trace.StartSpanWith(ctx, "engine.Recommend",
		attribute.String("symbol", symbol),
		attribute.Int("window_days", windowDays),
	)
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Computing recommendation",
		"symbol", symbol,
		"window_days", windowDays,
	)

	result, err := oe.engine.Recommend(ctx, symbol, windowDays)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Recommendation failed", err,
			"symbol", symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("recommendation", string(result.Recommendation)),
		attribute.Float64("confidence", result.Confidence),
	)
	logger.InfoSkip(ctx, 1, "Recommendation completed",
		"symbol", result.Symbol,
		"recommendation", string(result.Recommendation),
		"confidence", result.Confidence,
		"news_count", result.NewsCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
