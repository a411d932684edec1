package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Client{
		baseURL:     baseURL,
		clientID:    "client-1",
		apiKey:      "api-key-1",
		checksumKey: "checksum-secret",
		http:        &http.Client{Timeout: 5 * time.Second},
		log:         log,
	}
}

func TestCreatePaymentLink(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payment-requests", r.URL.Path)
		assert.Equal(t, "client-1", r.Header.Get("x-client-id"))
		assert.Equal(t, "api-key-1", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "00",
			"desc": "success",
			"data": map[string]interface{}{
				"checkoutUrl":   "https://pay.example/checkout/abc",
				"paymentLinkId": "abc",
				"status":        "PENDING",
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	link, err := c.CreatePaymentLink(context.Background(), LinkRequest{
		OrderCode:   123456,
		Amount:      20000,
		Description: "tokens 100",
		ReturnURL:   "https://game.example/ok",
		CancelURL:   "https://game.example/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/checkout/abc", link.CheckoutURL)

	// The request carried a signature over the core fields.
	sig, ok := gotBody["signature"].(string)
	require.True(t, ok)
	mac := hmac.New(sha256.New, []byte("checksum-secret"))
	mac.Write([]byte("amount=20000&cancelUrl=https://game.example/cancel&description=tokens 100&orderCode=123456&returnUrl=https://game.example/ok"))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), sig)
}

func TestCreatePaymentLinkGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"code": "231", "desc": "duplicate order"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CreatePaymentLink(context.Background(), LinkRequest{OrderCode: 1, Amount: 1000})
	assert.ErrorContains(t, err, "duplicate order")
}

func TestCancelPaymentLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payment-requests/42/cancel", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"code": "00", "desc": "success", "data": map[string]interface{}{}})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	assert.NoError(t, c.CancelPaymentLink(context.Background(), 42, "user cancelled"))
}

func TestVerifyWebhook(t *testing.T) {
	c := newTestClient("http://unused")

	data := map[string]interface{}{
		"orderCode": float64(123456),
		"amount":    float64(20000),
		"code":      "00",
		"desc":      "success",
		"reference": nil,
	}

	// amount, code, desc, orderCode, reference in sorted order.
	mac := hmac.New(sha256.New, []byte("checksum-secret"))
	mac.Write([]byte("amount=20000&code=00&desc=success&orderCode=123456&reference="))
	sig := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, c.VerifyWebhook(data, sig))
	assert.False(t, c.VerifyWebhook(data, "deadbeef"))

	data["amount"] = float64(9999)
	assert.False(t, c.VerifyWebhook(data, sig))
}
