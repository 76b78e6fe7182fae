package sentiment

import (
	"context"
	"strings"
	"unicode"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// Lexicon labels headlines by counting financial sentiment words
// (Loughran-McDonald style lists extended with headline verbs).
type Lexicon struct {
	positive map[string]bool
	negative map[string]bool
}

var _ interfaces.SentimentScorer = (*Lexicon)(nil)

func NewLexicon() *Lexicon {
	return &Lexicon{
		positive: wordSet(positiveWords),
		negative: wordSet(negativeWords),
	}
}

func (l *Lexicon) ScoreBatch(_ context.Context, texts []string) ([]types.SentimentLabel, error) {
	out := make([]types.SentimentLabel, len(texts))
	for i, text := range texts {
		out[i] = l.Label(text)
	}
	return out, nil
}

// Label is Positive or Negative when one side has strictly more hits.
func (l *Lexicon) Label(text string) types.SentimentLabel {
	pos, neg := 0, 0
	for _, w := range tokenize(strings.ToLower(text)) {
		if l.positive[w] {
			pos++
		}
		if l.negative[w] {
			neg++
		}
	}
	switch {
	case pos > neg:
		return types.Positive
	case neg > pos:
		return types.Negative
	default:
		return types.Neutral
	}
}

func tokenize(text string) []string {
	var words []string
	var cur strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			cur.WriteRune(r)
		} else if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

func wordSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var positiveWords = []string{
	"achieve", "beat", "beats", "benefit", "better", "boost", "boosts", "bullish",
	"climb", "climbs", "excellent", "exceptional", "favorable", "gain", "gains",
	"good", "great", "grew", "growth", "high", "higher", "improve", "improved",
	"improvement", "innovation", "jump", "jumps", "leader", "leading", "opportunity",
	"optimistic", "outperform", "positive", "profit", "profitable", "progress",
	"rally", "rallies", "rebound", "record", "rise", "rises", "robust", "soar",
	"soars", "solid", "strength", "strong", "stronger", "succeed", "success",
	"successful", "superior", "surge", "surges", "surpass", "upbeat", "upgrade",
	"upgraded", "winning",
}

var negativeWords = []string{
	"adverse", "bearish", "concern", "concerns", "crash", "crisis", "cut", "cuts",
	"damage", "decline", "declines", "decrease", "deficit", "deteriorate", "difficult",
	"disappoint", "disappointing", "downgrade", "downgraded", "downturn", "drop",
	"drops", "fail", "failure", "fall", "falling", "falls", "fear", "fears",
	"headwind", "impairment", "lawsuit", "layoffs", "loss", "losses", "lower",
	"miss", "misses", "negative", "plunge", "plunges", "poor", "probe", "problem",
	"recession", "restructuring", "selloff", "sink", "sinks", "slide", "slowdown",
	"slump", "tumble", "tumbles", "underperform", "unfavorable", "unprofitable",
	"weak", "weakness", "worse", "worst",
}
