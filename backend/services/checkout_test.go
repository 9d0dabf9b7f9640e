package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeCheckoutFlow(t *testing.T) {
	var forms = map[string]map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		forms[r.URL.Path] = form

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/products":
			io.WriteString(w, `{"id":"prod_1"}`)
		case "/v1/prices":
			io.WriteString(w, `{"id":"price_1"}`)
		case "/v1/checkout/sessions":
			io.WriteString(w, `{"id":"cs_1","url":"https://checkout.stripe.com/pay/cs_1"}`)
		case "/v1/checkout/sessions/cs_1/expire":
			io.WriteString(w, `{"id":"cs_1"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	checkout := NewStripeCheckout(srv.URL, "sk_test", "http://localhost:8080/", time.Second)
	ctx := context.Background()

	priceID, err := checkout.CreatePrice(ctx, "Go course", 11)
	require.NoError(t, err)
	assert.Equal(t, "price_1", priceID)
	assert.Equal(t, "Go course", forms["/v1/products"]["name"])
	assert.Equal(t, "1100", forms["/v1/prices"]["unit_amount"])
	assert.Equal(t, "usd", forms["/v1/prices"]["currency"])
	assert.Equal(t, "prod_1", forms["/v1/prices"]["product"])

	session, err := checkout.CreateSession(ctx, priceID)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_1", session.URL)
	assert.Equal(t, "price_1", forms["/v1/checkout/sessions"]["line_items[0][price]"])
	assert.Equal(t, "payment", forms["/v1/checkout/sessions"]["mode"])

	require.NoError(t, checkout.ExpireSession(ctx, "cs_1"))
}

func TestStripeCheckoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"Invalid API Key"}}`)
	}))
	defer srv.Close()

	checkout := NewStripeCheckout(srv.URL, "bad", "http://localhost/", time.Second)
	_, err := checkout.CreatePrice(context.Background(), "x", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.Contains(t, err.Error(), "Invalid API Key")
}
