package services

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newRatesServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v3/latest", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "RUB", r.URL.Query().Get("currencies"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestConvertToUSD(t *testing.T) {
	srv, calls := newRatesServer(t, http.StatusOK, `{"data":{"RUB":{"code":"RUB","value":90}}}`)
	rates := NewRatesService(srv.URL, "key", "RUB", time.Second, discardLogger())

	usd, err := rates.ConvertToUSD(context.Background(), decimal.RequireFromString("1000.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), usd)

	_, err = rates.ConvertToUSD(context.Background(), decimal.NewFromInt(90))
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second lookup is served from cache")
}

func TestRateErrorPropagates(t *testing.T) {
	srv, _ := newRatesServer(t, http.StatusUnauthorized, `{"message":"invalid key"}`)
	rates := NewRatesService(srv.URL, "key", "RUB", time.Second, discardLogger())

	_, err := rates.ConvertToUSD(context.Background(), decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrRateUnavailable)
}

func TestRateMissingCurrency(t *testing.T) {
	srv, _ := newRatesServer(t, http.StatusOK, `{"data":{}}`)
	rates := NewRatesService(srv.URL, "key", "RUB", time.Second, discardLogger())

	_, err := rates.Rate(context.Background())
	assert.ErrorIs(t, err, ErrRateUnavailable)
}

func TestStaleRateIsReusedOnFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":{"RUB":{"code":"RUB","value":100}}}`)
	}))
	defer srv.Close()

	rates := NewRatesService(srv.URL, "key", "RUB", time.Second, discardLogger())
	rate, err := rates.Rate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, rate)

	rates.cacheTTL = 0
	fail.Store(true)

	rate, err = rates.Rate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, rate)
}
