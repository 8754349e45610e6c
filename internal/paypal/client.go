// Package paypal wraps the PayPal REST checkout API: client-credentials token
// exchange, order creation and order capture. Provider responses are returned
// verbatim so the frontend sees exactly what PayPal sent.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tumima88/my-be/internal/domain"
)

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	payeeEmail   string
	httpClient   *http.Client
}

func NewClient(baseURL, clientID, clientSecret, payeeEmail string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		payeeEmail:   payeeEmail,
		httpClient:   httpClient,
	}
}

// AuthError is a failed token exchange. Body carries the provider's raw error
// response for diagnostics.
type AuthError struct {
	Body string
}

func (e *AuthError) Error() string {
	return "paypal: token request failed: " + e.Body
}

// OrderError is a failed order creation.
type OrderError struct {
	Body string
}

func (e *OrderError) Error() string {
	return "paypal: create order failed: " + e.Body
}

// CaptureError is a failed order capture.
type CaptureError struct {
	Body string
}

func (e *CaptureError) Error() string {
	return "paypal: capture order failed: " + e.Body
}

// AccessToken performs a client-credentials exchange and returns a fresh
// bearer token. Tokens are deliberately not cached: every order or capture
// call pays for its own exchange, keeping the client stateless.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en_US")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Body: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthError{Body: string(body)}
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", &AuthError{Body: string(body)}
	}

	return token.AccessToken, nil
}

// CreateOrder totals the cart lines, builds a single-purchase-unit USD payload
// naming the configured payee, and posts it to the checkout orders endpoint.
// The provider's order object is returned untouched.
func (c *Client) CreateOrder(ctx context.Context, lines []domain.CartLine) (json.RawMessage, error) {
	total, err := domain.CartTotal(lines)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"amount": map[string]string{
				"currency_code": "USD",
				"value":         total.StringFixed(2),
			},
			"payee": map[string]string{
				"email_address": c.payeeEmail,
			},
		}},
		"application_context": map[string]string{
			"return_url": "https://example.com/return",
			"cancel_url": "https://example.com/cancel",
		},
	}

	return c.authorizedPost(ctx, "/v2/checkout/orders", payload)
}

// CaptureOrder captures a previously created order by its provider-issued id.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	return c.authorizedPost(ctx, path, nil)
}

// authorizedPost acquires a fresh token, posts the payload (if any) and
// returns the raw response body on 2xx. Non-2xx is mapped to the typed error
// for the path being called.
func (c *Client) authorizedPost(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.pathError(path, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.pathError(path, string(body))
	}

	return body, nil
}

func (c *Client) pathError(path, body string) error {
	if strings.HasSuffix(path, "/capture") {
		return &CaptureError{Body: body}
	}
	return &OrderError{Body: body}
}
