package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrCheckoutFailed = errors.New("payment provider request failed")

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeObject struct {
	ID string `json:"id"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StripeCheckout talks to the Stripe REST API with form-encoded requests.
type StripeCheckout struct {
	client     *resty.Client
	successURL string
}

func NewStripeCheckout(baseURL, apiKey, successURL string, timeout time.Duration) *StripeCheckout {
	return &StripeCheckout{
		client: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(apiKey).
			SetTimeout(timeout),
		successURL: successURL,
	}
}

// CreatePrice creates a product named name and a one-off USD price for it.
func (s *StripeCheckout) CreatePrice(ctx context.Context, name string, usd int64) (string, error) {
	var product stripeObject
	if err := s.post(ctx, "/v1/products", map[string]string{"name": name}, &product); err != nil {
		return "", err
	}

	var price stripeObject
	err := s.post(ctx, "/v1/prices", map[string]string{
		"currency":    "usd",
		"unit_amount": strconv.FormatInt(usd*100, 10),
		"product":     product.ID,
	}, &price)
	if err != nil {
		return "", err
	}
	return price.ID, nil
}

func (s *StripeCheckout) CreateSession(ctx context.Context, priceID string) (*CheckoutSession, error) {
	var session CheckoutSession
	err := s.post(ctx, "/v1/checkout/sessions", map[string]string{
		"success_url":             s.successURL,
		"line_items[0][price]":    priceID,
		"line_items[0][quantity]": "1",
		"mode":                    "payment",
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ExpireSession closes an open session so it can no longer be paid.
func (s *StripeCheckout) ExpireSession(ctx context.Context, sessionID string) error {
	return s.post(ctx, "/v1/checkout/sessions/"+sessionID+"/expire", nil, &stripeObject{})
}

func (s *StripeCheckout) post(ctx context.Context, path string, form map[string]string, result interface{}) error {
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(result).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCheckoutFailed, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return fmt.Errorf("%w: %s: status %d: %s", ErrCheckoutFailed, path, resp.StatusCode(), msg)
	}
	return nil
}
