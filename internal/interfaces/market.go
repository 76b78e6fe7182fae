package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// PriceProvider is a live market data source.
type PriceProvider interface {
	Quote(ctx context.Context, symbol string) (types.Quote, error)
	// PriceHistory returns bars oldest first. rangeSpec and interval use the
	// chart vocabulary ("3mo", "1d", "7d", "1h").
	PriceHistory(ctx context.Context, symbol, rangeSpec, interval string) ([]types.PriceBar, error)
}

// PriceStore exposes stored closes.
type PriceStore interface {
	// LatestClose reports ok=false when the symbol has no stored bars.
	LatestClose(ctx context.Context, symbol string) (close float64, ok bool, err error)
}

// RiskDataSource loads close series for every stored symbol over the
// trailing window that ends at the latest stored timestamp.
type RiskDataSource interface {
	LoadRecentCloses(ctx context.Context, daysBack int) (map[string][]float64, error)
}
