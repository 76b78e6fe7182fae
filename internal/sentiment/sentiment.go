package sentiment

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// LabelAll never fails: if the scorer errors or returns the wrong number of
// labels, every text is labelled Neutral.
func LabelAll(ctx context.Context, scorer interfaces.SentimentScorer, texts []string) []types.SentimentLabel {
	if len(texts) == 0 {
		return []types.SentimentLabel{}
	}
	labels, err := scorer.ScoreBatch(ctx, texts)
	if err == nil && len(labels) == len(texts) {
		return labels
	}
	if err != nil {
		logger.Warn(ctx, "Sentiment scoring failed, using Neutral", "texts", len(texts), "error", err)
	}
	out := make([]types.SentimentLabel, len(texts))
	for i := range out {
		out[i] = types.Neutral
	}
	return out
}

// Score returns +1, -1 or 0 for a single text.
func Score(ctx context.Context, scorer interfaces.SentimentScorer, text string) float64 {
	return types.LabelScore(string(LabelAll(ctx, scorer, []string{text})[0]))
}

// New picks FinBERT when a token is configured and the lexicon otherwise.
func New(endpoint, token string) interfaces.SentimentScorer {
	if token == "" {
		return NewLexicon()
	}
	return NewFinBERT(endpoint, token)
}
