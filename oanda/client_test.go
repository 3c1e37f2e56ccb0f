package oanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/market"
)

func testClient(srv *httptest.Server) *Client {
	return newClient(srv.URL, srv.URL, "test-token", "001-001-1-001", nil)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("practice", "tok", "acct", nil)
	require.NoError(t, err)
	assert.Equal(t, PracticeURL, c.baseURL)
	assert.Equal(t, PracticeStreamURL, c.streamURL)

	c, err = NewClient("live", "tok", "acct", nil)
	require.NoError(t, err)
	assert.Equal(t, LiveURL, c.baseURL)

	_, err = NewClient("moon", "tok", "acct", nil)
	assert.Error(t, err)
}

func TestRetrieveBars(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/v3/instruments/USD_JPY/candles", r.URL.Path)
		assert.Equal(t, "M", r.URL.Query().Get("price"))
		assert.Equal(t, "D", r.URL.Query().Get("granularity"))
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-03-01T00:00:00Z", r.URL.Query().Get("to"))

		_ = json.NewEncoder(w).Encode(candlesResponse{
			Instrument:  "USD_JPY",
			Granularity: "D",
			Candles: []apiCandle{
				{Complete: true, Volume: 100, Time: "2024-02-28T22:00:00.000000000Z", Mid: candleData{O: "150.1", H: "150.9", L: "149.8", C: "150.5"}},
				{Complete: true, Volume: 120, Time: "2024-02-29T22:00:00.000000000Z", Mid: candleData{O: "150.5", H: "151.0", L: "150.2", C: "150.7"}},
				{Complete: false, Volume: 10, Time: "2024-03-01T22:00:00.000000000Z", Mid: candleData{O: "150.7", H: "150.8", L: "150.6", C: "150.7"}},
			},
		})
	}))
	defer srv.Close()

	bars, err := testClient(srv).RetrieveBars(context.Background(), "USD_JPY", market.Daily, from, to)
	require.NoError(t, err)
	require.Len(t, bars, 2, "incomplete candle should be skipped")
	assert.Equal(t, 150.1, bars[0].Open)
	assert.Equal(t, 150.5, bars[0].Close)
	assert.Equal(t, 100.0, bars[0].Volume)
	assert.Equal(t, 150.7, bars[1].Close)
}

func TestGetCandlesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessage":"Invalid value specified for 'instrument'"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(srv)

	_, err := c.GetCandles(context.Background(), CandlesRequest{})
	assert.Error(t, err)

	_, err = c.GetCandles(context.Background(), CandlesRequest{Instrument: "USD_JPY", Count: 6000})
	assert.Error(t, err)

	_, err = c.GetCandles(context.Background(), CandlesRequest{Instrument: "NOPE", Count: 10})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestOpenAndClosePosition(t *testing.T) {
	var gotOrder orderRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/accounts/001-001-1-001/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotOrder))
		fmt.Fprint(w, `{"orderFillTransaction":{"id":"6","time":"2024-03-01T09:00:00.000000000Z","price":"150.12",
			"tradeOpened":{"tradeID":"7","units":"-10000","price":"150.12"}}}`)
	})
	mux.HandleFunc("/v3/accounts/001-001-1-001/trades/7/close", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		fmt.Fprint(w, `{"orderFillTransaction":{"id":"8","time":"2024-03-02T09:00:00.000000000Z","price":"149.92","pl":"2000.0000"}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv)
	ctx := context.Background()

	pos, err := c.OpenPosition(ctx, "USD_JPY", 10000, market.Sell)
	require.NoError(t, err)
	assert.Equal(t, "-10000", gotOrder.Order.Units)
	assert.Equal(t, "MARKET", gotOrder.Order.Type)
	assert.Equal(t, "7", pos.ID)
	assert.Equal(t, 150.12, pos.EntryPrice)
	assert.Equal(t, market.Sell, pos.Direction)

	closed, err := c.ClosePosition(ctx, "7")
	require.NoError(t, err)
	assert.True(t, closed.Closed)
	assert.Equal(t, 149.92, closed.ExitPrice)
	assert.Equal(t, 2000.0, closed.ProfitOrLoss)
	assert.Equal(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), closed.ClosedAt.UTC())

	_, err = c.ClosePosition(ctx, "7")
	assert.ErrorIs(t, err, broker.ErrPositionNotFound)
}

func TestOpenPositionNotFilled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"orderCancelTransaction":{"reason":"MARKET_HALTED"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv).OpenPosition(context.Background(), "USD_JPY", 10000, market.Buy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MARKET_HALTED")
}
