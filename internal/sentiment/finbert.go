package sentiment

import (
	"context"
	"errors"
	"fmt"

	"stock-advisor/internal/api"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const (
	DefaultFinBERTURL = "https://api-inference.huggingface.co/models/ProsusAI/finbert"
	maxTextLen        = 512
)

// FinBERT classifies texts through a hosted FinBERT inference endpoint.
type FinBERT struct {
	client *api.Client
}

var _ interfaces.SentimentScorer = (*FinBERT)(nil)

// NewFinBERT builds a scorer posting to endpoint with a bearer token.
func NewFinBERT(endpoint, token string, opts ...api.ClientOption) *FinBERT {
	if endpoint == "" {
		endpoint = DefaultFinBERTURL
	}
	base := []api.ClientOption{
		api.WithBaseURL(endpoint),
		api.WithHeader("Authorization", "Bearer "+token),
		api.WithRetry(api.DefaultRetryConfig()),
	}
	return &FinBERT{client: api.NewClient(append(base, opts...)...)}
}

type classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ScoreBatch sends all texts in one request. Each text gets the label with
// the highest score.
func (f *FinBERT) ScoreBatch(ctx context.Context, texts []string) ([]types.SentimentLabel, error) {
	if len(texts) == 0 {
		return []types.SentimentLabel{}, nil
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = truncate(t, maxTextLen)
	}

	resp, err := f.client.POST(ctx, "", map[string]any{
		"inputs":  inputs,
		"options": map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return nil, fmt.Errorf("finbert request: %w", err)
	}

	var out [][]classification
	if err := resp.ParseJSON(&out); err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("finbert returned %d results for %d texts", len(out), len(texts))
	}

	labels := make([]types.SentimentLabel, len(out))
	for i, scores := range out {
		best, err := top(scores)
		if err != nil {
			return nil, fmt.Errorf("finbert result %d: %w", i, err)
		}
		labels[i] = types.NormalizeLabel(best.Label)
	}
	return labels, nil
}

func top(scores []classification) (classification, error) {
	if len(scores) == 0 {
		return classification{}, errors.New("empty classification")
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
