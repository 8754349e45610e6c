//go:build integration

package test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/tumima88/my-be/internal/api"
	"github.com/tumima88/my-be/internal/catalog"
	"github.com/tumima88/my-be/internal/domain"
	"github.com/tumima88/my-be/internal/messaging"
	"github.com/tumima88/my-be/internal/paypal"
)

type emptyLister struct{}

func (emptyLister) ListProducts(context.Context, int, int) ([]catalog.Product, error) {
	return []catalog.Product{}, nil
}

type noGenerator struct{}

func (noGenerator) Generate(context.Context, string) (string, error) {
	return "", nil
}

// TestCapturePublishesEvent runs the capture route against a fake PayPal and a
// real Kafka broker, and asserts the order.captured event lands on the topic
// with the capture outcome.
func TestCapturePublishesEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	paypalSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/oauth2/token":
			_, _ = w.Write([]byte(`{"access_token":"test-token"}`))
		case strings.HasSuffix(r.URL.Path, "/capture"):
			_, _ = w.Write([]byte(`{"id":"ORDER-77","status":"COMPLETED"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer paypalSrv.Close()

	producer := messaging.NewProducer(brokers, messaging.TopicOrderCaptured)
	defer func() { _ = producer.Close() }()

	payments := paypal.NewClient(paypalSrv.URL, "id", "secret", "merchant@example.com", paypalSrv.Client())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler, err := api.NewHandler(emptyLister{}, payments, nil, noGenerator{}, producer, logger)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/paypal/capture-order", strings.NewReader(`{"order_id":"ORDER-77"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.HandleCaptureOrder(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		Topic:       messaging.TopicOrderCaptured,
		GroupID:     "integration-test",
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	msg, err := reader.ReadMessage(ctx)
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}

	if string(msg.Key) != "ORDER-77" {
		t.Errorf("expected message key ORDER-77, got %s", msg.Key)
	}

	var event domain.OrderCapturedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.OrderID != "ORDER-77" {
		t.Errorf("expected order_id ORDER-77, got %s", event.OrderID)
	}
	if event.Status != "COMPLETED" {
		t.Errorf("expected status COMPLETED, got %s", event.Status)
	}
	if event.EventID == "" {
		t.Error("expected event_id to be set")
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}
