package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

var ErrRateUnavailable = errors.New("exchange rate unavailable")

type latestRatesResponse struct {
	Data map[string]struct {
		Code  string  `json:"code"`
		Value float64 `json:"value"`
	} `json:"data"`
}

// RatesService converts domestic amounts to USD using currencyapi.com rates.
// Successful lookups are cached for cacheTTL; a stale cached rate is reused
// when a refresh fails.
type RatesService struct {
	client   *resty.Client
	apiKey   string
	currency string
	logger   *log.Logger

	cacheMu   sync.RWMutex
	rate      float64
	cacheTime time.Time
	cacheTTL  time.Duration
}

func NewRatesService(baseURL, apiKey, currency string, timeout time.Duration, logger *log.Logger) *RatesService {
	return &RatesService{
		client:   resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		apiKey:   apiKey,
		currency: currency,
		logger:   logger,
		cacheTTL: 5 * time.Minute,
	}
}

// Rate returns how many units of the domestic currency buy one USD.
func (s *RatesService) Rate(ctx context.Context) (float64, error) {
	s.cacheMu.RLock()
	if s.rate > 0 && time.Since(s.cacheTime) < s.cacheTTL {
		rate := s.rate
		s.cacheMu.RUnlock()
		return rate, nil
	}
	s.cacheMu.RUnlock()

	rate, err := s.fetchRate(ctx)
	if err != nil {
		s.cacheMu.RLock()
		cached := s.rate
		s.cacheMu.RUnlock()
		if cached > 0 {
			s.logger.Printf("[RATES] refresh failed, using cached %s rate: %v", s.currency, err)
			return cached, nil
		}
		return 0, err
	}

	s.cacheMu.Lock()
	s.rate = rate
	s.cacheTime = time.Now()
	s.cacheMu.Unlock()

	return rate, nil
}

// ConvertToUSD returns the whole number of dollars amount is worth.
func (s *RatesService) ConvertToUSD(ctx context.Context, amount decimal.Decimal) (int64, error) {
	rate, err := s.Rate(ctx)
	if err != nil {
		return 0, err
	}
	return amount.Div(decimal.NewFromFloat(rate)).IntPart(), nil
}

func (s *RatesService) fetchRate(ctx context.Context) (float64, error) {
	var result latestRatesResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":     s.apiKey,
			"currencies": s.currency,
		}).
		SetResult(&result).
		Get("/v3/latest")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("%w: status %d: %s", ErrRateUnavailable, resp.StatusCode(), resp.String())
	}

	entry, ok := result.Data[s.currency]
	if !ok || entry.Value <= 0 {
		return 0, fmt.Errorf("%w: no %s rate in response", ErrRateUnavailable, s.currency)
	}
	return entry.Value, nil
}
