package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

func TestLexiconLabels(t *testing.T) {
	lex := NewLexicon()

	assert.Equal(t, types.Positive, lex.Label("Micron shares surge after record quarter"))
	assert.Equal(t, types.Negative, lex.Label("Chipmaker stock plunges on weak guidance"))
	assert.Equal(t, types.Neutral, lex.Label("Company to hold annual meeting on Tuesday"))
	assert.Equal(t, types.Neutral, lex.Label("Strong sales offset by losses"))
}

func TestLexiconScoreBatchKeepsOrder(t *testing.T) {
	got, err := NewLexicon().ScoreBatch(context.Background(), []string{"gains", "losses", "meeting"})
	require.NoError(t, err)
	assert.Equal(t, []types.SentimentLabel{types.Positive, types.Negative, types.Neutral}, got)
}

func TestFinBERTPicksTopLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body struct {
			Inputs []string `json:"inputs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Inputs, 2)
		assert.Len(t, []rune(body.Inputs[1]), maxTextLen)

		w.Write([]byte(`[
			[{"label":"positive","score":0.9},{"label":"neutral","score":0.08},{"label":"negative","score":0.02}],
			[{"label":"neutral","score":0.3},{"label":"negative","score":0.6},{"label":"positive","score":0.1}]
		]`))
	}))
	defer srv.Close()

	f := NewFinBERT(srv.URL, "tok")
	got, err := f.ScoreBatch(context.Background(), []string{"up", strings.Repeat("x", 600)})
	require.NoError(t, err)
	assert.Equal(t, []types.SentimentLabel{types.Positive, types.Negative}, got)
}

func TestFinBERTEmptyInputSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	got, err := NewFinBERT(srv.URL, "tok").ScoreBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, called)
}

func TestFinBERTLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewFinBERT(srv.URL, "tok").ScoreBatch(context.Background(), []string{"a"})
	assert.Error(t, err)
}

type failingScorer struct{}

func (failingScorer) ScoreBatch(context.Context, []string) ([]types.SentimentLabel, error) {
	return nil, errors.New("model loading")
}

func TestLabelAllFallsBackToNeutral(t *testing.T) {
	got := LabelAll(context.Background(), failingScorer{}, []string{"a", "b"})
	assert.Equal(t, []types.SentimentLabel{types.Neutral, types.Neutral}, got)
	assert.Empty(t, LabelAll(context.Background(), failingScorer{}, nil))
}

func TestScore(t *testing.T) {
	lex := NewLexicon()
	assert.Equal(t, 1.0, Score(context.Background(), lex, "profit jumps"))
	assert.Equal(t, -1.0, Score(context.Background(), lex, "profit warning, shares tumble and sink"))
	assert.Equal(t, 0.0, Score(context.Background(), failingScorer{}, "anything"))
}

func TestNewSelectsScorer(t *testing.T) {
	_, isLex := New("", "").(*Lexicon)
	assert.True(t, isLex)
	_, isFin := New("", "token").(*FinBERT)
	assert.True(t, isFin)
}
