package types

import (
	"fmt"
	"strings"
	"time"
)

// PriceBar is one OHLCV observation for a symbol.
type PriceBar struct {
	Symbol string    `json:"symbol"`
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// NewsItem is a stored article. Tickers is a comma-separated list as written by ingestion.
type NewsItem struct {
	Symbol      string     `json:"symbol"`
	Tickers     string     `json:"tickers"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at"`
	Sentiment   *float64   `json:"sentiment"`
}

// LiveNews is an article returned by a live news provider.
type LiveNews struct {
	Title     string         `json:"title"`
	Link      string         `json:"link"`
	Date      string         `json:"date"`
	Sentiment SentimentLabel `json:"sentiment"`
	Provider  string         `json:"provider"`
	Image     string         `json:"image,omitempty"`
}

type SentimentLabel string

const (
	Positive SentimentLabel = "Positive"
	Negative SentimentLabel = "Negative"
	Neutral  SentimentLabel = "Neutral"
)

// LabelScore maps a free-form label to +1, -1 or 0. Matching is a
// case-insensitive substring test so "Somewhat-Bullish positive" still counts.
func LabelScore(label string) float64 {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "positive"):
		return 1
	case strings.Contains(l, "negative"):
		return -1
	default:
		return 0
	}
}

// NormalizeLabel turns a classifier label into one of the three canonical labels.
func NormalizeLabel(label string) SentimentLabel {
	switch LabelScore(label) {
	case 1:
		return Positive
	case -1:
		return Negative
	default:
		return Neutral
	}
}

type Recommendation string

const (
	StrongBuy Recommendation = "Strong Buy"
	Buy       Recommendation = "Buy"
	Hold      Recommendation = "Hold"
	Sell      Recommendation = "Sell"
)

type RecommendationResult struct {
	Symbol          string         `json:"symbol"`
	CurrentPrice    float64        `json:"current_price"`
	TargetPriceMean float64        `json:"target_price_mean"`
	TargetPriceHigh float64        `json:"target_price_high"`
	TargetPriceLow  float64        `json:"target_price_low"`
	SentimentAvg    float64        `json:"sentiment_avg"`
	Trend           float64        `json:"trend"`
	ExpectedDiff    float64        `json:"expected_diff"`
	Recommendation  Recommendation `json:"recommendation"`
	Confidence      float64        `json:"confidence"`
	WindowDays      int            `json:"window_days"`
	NewsCount       int            `json:"news_count"`
}

type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// ParseRiskTier accepts LOW, MEDIUM or HIGH in any case.
func ParseRiskTier(s string) (RiskTier, error) {
	switch RiskTier(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, nil
	case RiskMedium:
		return RiskMedium, nil
	case RiskHigh:
		return RiskHigh, nil
	}
	return "", fmt.Errorf("level must be LOW, MEDIUM or HIGH, got %q: %w", s, ErrInvalidRequest)
}

type RiskProfile struct {
	Symbol      string   `json:"symbol"`
	RiskLabel   RiskTier `json:"risk_label"`
	RiskScore   float64  `json:"risk_score"`
	Volatility  float64  `json:"volatility"`
	MaxDrawdown float64  `json:"max_drawdown"`
	Ret30       *float64 `json:"ret30"`
}

// StockSnapshot is the stock detail payload served to the dashboard.
type StockSnapshot struct {
	Symbol  string     `json:"symbol"`
	Name    string     `json:"name"`
	Price   float64    `json:"price"`
	History []PriceBar `json:"history"`
	News    []LiveNews `json:"news"`
}

// Quote is a live price lookup.
type Quote struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}
