package news

import (
	"context"
	"fmt"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const DefaultProviderTimeout = 8 * time.Second

// Chain asks providers in priority order and returns the first non-empty
// result. A failing, slow or panicking provider counts as empty.
type Chain struct {
	providers []interfaces.NewsProvider
	timeout   time.Duration
}

func NewChain(timeout time.Duration, providers ...interfaces.NewsProvider) *Chain {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Chain{providers: providers, timeout: timeout}
}

// Providers returns the provider names in priority order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// FetchNews never fails; the second return names the provider that answered
// or is empty when none did.
func (c *Chain) FetchNews(ctx context.Context, symbol string, limit, daysBack int) ([]types.LiveNews, string) {
	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}
		items := c.call(ctx, p, symbol, limit, daysBack)
		if len(items) > 0 {
			return items, p.Name()
		}
	}
	return []types.LiveNews{}, ""
}

func (c *Chain) call(ctx context.Context, p interfaces.NewsProvider, symbol string, limit, daysBack int) (items []types.LiveNews) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Provider(ctx, p.Name(), symbol, 0, fmt.Errorf("panic: %v", r))
			items = nil
		}
	}()

	items, err := p.FetchNews(ctx, symbol, limit, daysBack)
	logger.Provider(ctx, p.Name(), symbol, len(items), err)
	if err != nil {
		return nil
	}
	return items
}
