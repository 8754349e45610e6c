package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v6/latest/USD" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if key := r.URL.Query().Get("apikey"); key != "test-key" {
			t.Errorf("unexpected apikey: %q", key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base_code":"USD","rates":{"USD":1,"EUR":0.92,"GBP":0.79}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", srv.Client())

	rate, err := client.Lookup(context.Background(), "USD", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.From != "USD" || rate.To != "EUR" || rate.Rate != 0.92 {
		t.Errorf("unexpected rate: %+v", rate)
	}
	if calls != 1 {
		t.Errorf("expected one provider call, got %d", calls)
	}
}

func TestLookup_SameCurrencySkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected for identical currencies")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", srv.Client())

	for _, code := range []string{"USD", "EUR", "JPY", "XYZ"} {
		rate, err := client.Lookup(context.Background(), code, code)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", code, err)
		}
		if rate.Rate != 1 {
			t.Errorf("expected rate 1 for %s->%s, got %v", code, code, rate.Rate)
		}
		if rate.From != code || rate.To != code {
			t.Errorf("unexpected envelope: %+v", rate)
		}
	}
}

func TestLookup_TargetMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rates":{"USD":1,"EUR":0.92}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", srv.Client())

	_, err := client.Lookup(context.Background(), "USD", "ZWL")

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Currency != "ZWL" {
		t.Errorf("unexpected currency: %q", notFound.Currency)
	}
}

func TestLookup_ProviderRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"result":"error","error-type":"invalid-key"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key", srv.Client())

	_, err := client.Lookup(context.Background(), "USD", "EUR")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !strings.Contains(upstream.Body, "invalid-key") {
		t.Errorf("expected raw provider body, got %q", upstream.Body)
	}
}
