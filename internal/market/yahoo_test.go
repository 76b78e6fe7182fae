package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartFixture = `{"chart":{"result":[{
	"meta":{"symbol":"MU","longName":"Micron Technology, Inc.","regularMarketPrice":101.25},
	"timestamp":[1700086400,1700000000,1700172800],
	"indicators":{"quote":[{
		"open":[100.5,99.0,null],
		"high":[102.0,100.0,null],
		"low":[99.5,98.0,null],
		"close":[101.0,99.5,null],
		"volume":[1000,2000,null]
	}]}
}],"error":null}}`

func TestPriceHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/MU", r.URL.Path)
		assert.Equal(t, "3mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	bars, err := NewYahoo(srv.URL, time.Second).PriceHistory(context.Background(), "MU", "3mo", "1d")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 99.5, bars[0].Close)
	assert.Equal(t, 101.0, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, "MU", bars[1].Symbol)
	assert.Equal(t, 1000.0, bars[1].Volume)
}

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	q, err := NewYahoo(srv.URL, time.Second).Quote(context.Background(), "MU")
	require.NoError(t, err)
	assert.Equal(t, 101.25, q.Price)
	assert.Equal(t, "Micron Technology, Inc.", q.Name)
}

func TestChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	_, err := NewYahoo(srv.URL, time.Second).Quote(context.Background(), "ZZZZ")
	assert.ErrorContains(t, err, "delisted")
}
