package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api-merchant.payos.vn"

// Client talks to the PayOS merchant API. All requests are signed with the
// merchant checksum key so the gateway can verify their origin, and webhook
// payloads are verified with the same key in the other direction.
type Client struct {
	baseURL     string
	clientID    string
	apiKey      string
	checksumKey string

	http *http.Client
	log  *logrus.Logger
}

// NewClientFromEnv builds a client from PAYOS_CLIENT_ID, PAYOS_API_KEY,
// PAYOS_CHECKSUM_KEY and optionally PAYOS_BASE_URL.
func NewClientFromEnv(log *logrus.Logger) *Client {
	baseURL := os.Getenv("PAYOS_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		clientID:    os.Getenv("PAYOS_CLIENT_ID"),
		apiKey:      os.Getenv("PAYOS_API_KEY"),
		checksumKey: os.Getenv("PAYOS_CHECKSUM_KEY"),
		http:        &http.Client{Timeout: 15 * time.Second},
		log:         log,
	}
}

// LinkRequest describes one checkout to create.
type LinkRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"returnUrl"`
	CancelURL   string `json:"cancelUrl"`
}

// LinkResponse is the slice of the gateway response the server cares about.
type LinkResponse struct {
	CheckoutURL   string `json:"checkoutUrl"`
	PaymentLinkID string `json:"paymentLinkId"`
	Status        string `json:"status"`
}

type apiEnvelope struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

// signLink computes the checksum the gateway expects on link creation:
// HMAC-SHA256 over the alphabetically ordered core fields.
func (c *Client) signLink(req LinkRequest) string {
	payload := fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		req.Amount, req.CancelURL, req.Description, req.OrderCode, req.ReturnURL)
	mac := hmac.New(sha256.New, []byte(c.checksumKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreatePaymentLink registers a checkout with the gateway and returns its
// hosted checkout URL.
func (c *Client) CreatePaymentLink(ctx context.Context, req LinkRequest) (*LinkResponse, error) {
	body := map[string]interface{}{
		"orderCode":   req.OrderCode,
		"amount":      req.Amount,
		"description": req.Description,
		"returnUrl":   req.ReturnURL,
		"cancelUrl":   req.CancelURL,
		"signature":   c.signLink(req),
	}
	var env apiEnvelope
	if err := c.post(ctx, "/v2/payment-requests", body, &env); err != nil {
		return nil, err
	}
	if env.Code != "00" {
		return nil, fmt.Errorf("payos: create link failed: %s %s", env.Code, env.Desc)
	}

	var link LinkResponse
	if err := json.Unmarshal(env.Data, &link); err != nil {
		return nil, fmt.Errorf("payos: bad link payload: %w", err)
	}
	return &link, nil
}

// CancelPaymentLink voids a pending checkout at the gateway.
func (c *Client) CancelPaymentLink(ctx context.Context, orderCode int64, reason string) error {
	var env apiEnvelope
	path := fmt.Sprintf("/v2/payment-requests/%d/cancel", orderCode)
	if err := c.post(ctx, path, map[string]interface{}{"cancellationReason": reason}, &env); err != nil {
		return err
	}
	if env.Code != "00" {
		return fmt.Errorf("payos: cancel failed: %s %s", env.Code, env.Desc)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("payos: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payos: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// VerifyWebhook checks the gateway signature over a webhook's data object.
// The signature covers "key=value" pairs sorted by key and joined with "&",
// with null values rendered as empty strings.
func (c *Client) VerifyWebhook(data map[string]interface{}, signature string) bool {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+webhookValue(data[k]))
	}

	mac := hmac.New(sha256.New, []byte(c.checksumKey))
	mac.Write([]byte(strings.Join(parts, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func webhookValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		// Integral JSON numbers must not pick up a decimal point.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
