package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"stock-advisor/internal/api"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const yahooChartBase = "https://query1.finance.yahoo.com"

// Yahoo reads quotes and OHLCV history from the Yahoo Finance chart API.
type Yahoo struct {
	client *api.Client
}

var _ interfaces.PriceProvider = (*Yahoo)(nil)

func NewYahoo(baseURL string, timeout time.Duration) *Yahoo {
	if baseURL == "" {
		baseURL = yahooChartBase
	}
	opts := []api.ClientOption{
		api.WithBaseURL(strings.TrimRight(baseURL, "/")),
		api.WithRetry(api.DefaultRetryConfig()),
		api.WithLogging(true),
	}
	for k, v := range api.YahooFinanceHeaders() {
		opts = append(opts, api.WithHeader(k, v))
	}
	if timeout > 0 {
		opts = append(opts, api.WithTimeout(timeout))
	}
	return &Yahoo{client: api.NewClient(opts...)}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				LongName           string  `json:"longName"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) fetchChart(ctx context.Context, symbol, rangeSpec, interval string) (*yahooChart, error) {
	resp, err := y.client.GET(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), url.Values{
		"range":    {rangeSpec},
		"interval": {interval},
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	var chart yahooChart
	if err := resp.ParseJSON(&chart); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: no result", symbol)
	}
	return &chart, nil
}

// Quote returns the regular market price and display name.
func (y *Yahoo) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	chart, err := y.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return types.Quote{}, err
	}
	meta := chart.Chart.Result[0].Meta
	q := types.Quote{
		Symbol: symbol,
		Name:   firstNonEmpty(meta.LongName, meta.ShortName, symbol),
		Price:  meta.RegularMarketPrice,
	}
	if q.Price <= 0 || math.IsNaN(q.Price) {
		return q, errors.New("yahoo: no regular market price")
	}
	return q, nil
}

// PriceHistory returns bars oldest first; rows with a missing close are skipped.
func (y *Yahoo) PriceHistory(ctx context.Context, symbol, rangeSpec, interval string) ([]types.PriceBar, error) {
	chart, err := y.fetchChart(ctx, symbol, rangeSpec, interval)
	if err != nil {
		return nil, err
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []types.PriceBar{}, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]types.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil || *c <= 0 {
			continue
		}
		bars = append(bars, types.PriceBar{
			Symbol: symbol,
			Time:   time.Unix(ts, 0).UTC(),
			Open:   valueOr(at(quote.Open, i), *c),
			High:   valueOr(at(quote.High, i), *c),
			Low:    valueOr(at(quote.Low, i), *c),
			Close:  *c,
			Volume: valueOr(at(quote.Volume, i), 0),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
