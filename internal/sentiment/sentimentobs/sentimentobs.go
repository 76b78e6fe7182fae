package sentimentobs

import (
	"context"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

type observableScorer struct {
	scorer interfaces.SentimentScorer
}

var _ interfaces.SentimentScorer = (*observableScorer)(nil)

func Wrap(scorer interfaces.SentimentScorer) interfaces.SentimentScorer {
	return &observableScorer{scorer: scorer}
}

func (o *observableScorer) ScoreBatch(ctx context.Context, texts []string) ([]types.SentimentLabel, error) {
	ctx, span := trace.StartSpan(ctx, "sentiment.ScoreBatch")
	defer span.End()

	start := time.Now()
	labels, err := o.scorer.ScoreBatch(ctx, texts)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Sentiment scoring failed", err,
			"texts", len(texts),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	pos, neg := 0, 0
	for _, l := range labels {
		switch l {
		case types.Positive:
			pos++
		case types.Negative:
			neg++
		}
	}
	logger.DebugSkip(ctx, 1, "Sentiment scored",
		"texts", len(texts),
		"positive", pos,
		"negative", neg,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return labels, nil
}
