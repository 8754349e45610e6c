// Package exchange looks up currency conversion rates from the
// open.er-api.com latest-rates endpoint.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Rate is the conversion result returned to the frontend.
type Rate struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// NotFoundError means the provider answered but its rate table has no entry
// for the requested target currency.
type NotFoundError struct {
	Currency string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("exchange: target currency %q not found", e.Currency)
}

// UpstreamError is a non-2xx answer from the rate provider.
type UpstreamError struct {
	Body string
}

func (e *UpstreamError) Error() string {
	return "exchange: rate request failed: " + e.Body
}

// Lookup returns the conversion rate from one currency code to another.
// Identical codes short-circuit to a rate of exactly 1 with no network call;
// otherwise the full rate table rooted at `from` is fetched and `to` is looked
// up in it.
func (c *Client) Lookup(ctx context.Context, from, to string) (Rate, error) {
	if from == to {
		return Rate{From: from, To: to, Rate: 1}, nil
	}

	endpoint := fmt.Sprintf("%s/v6/latest/%s?apikey=%s", c.baseURL, url.PathEscape(from), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Rate{}, fmt.Errorf("create rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Rate{}, &UpstreamError{Body: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Rate{}, fmt.Errorf("read rate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Rate{}, &UpstreamError{Body: string(body)}
	}

	var table struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &table); err != nil {
		return Rate{}, fmt.Errorf("decode rate response: %w", err)
	}

	rate, ok := table.Rates[to]
	if !ok {
		return Rate{}, &NotFoundError{Currency: to}
	}

	return Rate{From: from, To: to, Rate: rate}, nil
}
