// Package api is the public HTTP surface of the gateway. Each handler parses
// and validates one inbound shape, invokes exactly one provider client or the
// catalog store, and maps failures onto HTTP statuses with a uniform
// {"detail": message} error body.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tumima88/my-be/internal/catalog"
	"github.com/tumima88/my-be/internal/domain"
	"github.com/tumima88/my-be/internal/exchange"
	"github.com/tumima88/my-be/internal/gemini"
	"github.com/tumima88/my-be/internal/messaging"
	"github.com/tumima88/my-be/internal/paypal"
)

// ProductLister reads one page of catalog records.
type ProductLister interface {
	ListProducts(ctx context.Context, page, pageSize int) ([]catalog.Product, error)
}

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Handler struct {
	catalog   ProductLister
	payments  *paypal.Client
	rates     *exchange.Client
	generator TextGenerator
	producer  *messaging.Producer
	logger    *slog.Logger
	requests  metric.Int64Counter
}

// NewHandler wires the translator. producer may be nil, in which case captures
// publish no events.
func NewHandler(products ProductLister, payments *paypal.Client, rates *exchange.Client, generator TextGenerator, producer *messaging.Producer, logger *slog.Logger) (*Handler, error) {
	requests, err := otel.Meter("api").Int64Counter("gateway.requests",
		metric.WithDescription("Requests handled per route"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		catalog:   products,
		payments:  payments,
		rates:     rates,
		generator: generator,
		producer:  producer,
		logger:    logger,
		requests:  requests,
	}, nil
}

func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.count(r.Context(), "/")
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Server is running"})
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	h.count(r.Context(), "/api/products")

	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	pageSize, err := queryInt(r, "page_size", 50)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "page_size must be an integer")
		return
	}
	if pageSize < 1 {
		h.writeError(w, http.StatusBadRequest, "page_size must be positive")
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), page, pageSize)
	if err != nil {
		if errors.Is(err, catalog.ErrUnavailable) {
			h.writeError(w, http.StatusInternalServerError, "Database not connected")
			return
		}
		h.logger.Error("failed to list products", "error", err, "page", page, "page_size", pageSize)
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch products: "+err.Error())
		return
	}

	h.logger.Info("products listed", "page", page, "page_size", pageSize, "count", len(products))
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	h.count(r.Context(), "/api/paypal/create-order")

	var lines []domain.CartLine
	if err := json.NewDecoder(r.Body).Decode(&lines); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for i, line := range lines {
		if err := line.Validate(); err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid cart item %d: %v", i, err))
			return
		}
	}

	order, err := h.payments.CreateOrder(r.Context(), lines)
	if err != nil {
		h.writePaymentError(w, err)
		return
	}

	h.logger.Info("paypal order created", "items", len(lines))
	h.writeRawJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleCaptureOrder(w http.ResponseWriter, r *http.Request) {
	h.count(r.Context(), "/api/paypal/capture-order")

	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" {
		h.writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	capture, err := h.payments.CaptureOrder(r.Context(), req.OrderID)
	if err != nil {
		h.writePaymentError(w, err)
		return
	}

	if h.producer != nil {
		h.publishCaptured(r.Context(), req.OrderID, capture)
	}

	h.logger.Info("paypal order captured", "order_id", req.OrderID)
	h.writeRawJSON(w, http.StatusOK, capture)
}

func (h *Handler) HandleConvertCurrency(w http.ResponseWriter, r *http.Request) {
	h.count(r.Context(), "/api/convert-currency")

	from := r.URL.Query().Get("from_currency")
	to := r.URL.Query().Get("to_currency")
	if from == "" || to == "" {
		h.writeError(w, http.StatusBadRequest, "from_currency and to_currency are required")
		return
	}

	rate, err := h.rates.Lookup(r.Context(), from, to)
	if err != nil {
		var notFound *exchange.NotFoundError
		var upstream *exchange.UpstreamError
		switch {
		case errors.As(err, &notFound):
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Target currency '%s' not found.", notFound.Currency))
		case errors.As(err, &upstream):
			h.writeError(w, http.StatusInternalServerError, "Failed to get exchange rate: "+upstream.Body)
		default:
			h.logger.Error("failed to convert currency", "error", err, "from", from, "to", to)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, rate)
}

type generateEmailResponse struct {
	Success      bool   `json:"success"`
	EmailContent string `json:"emailContent"`
}

func (h *Handler) HandleGenerateEmail(w http.ResponseWriter, r *http.Request) {
	h.count(r.Context(), "/api/gemini/generate-email")

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		h.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	text, err := h.generator.Generate(r.Context(), req.Prompt)
	if err != nil {
		var genErr *gemini.GenerationError
		switch {
		case errors.Is(err, gemini.ErrNotConfigured):
			h.writeError(w, http.StatusServiceUnavailable, "Gemini AI client not configured on backend.")
		case errors.As(err, &genErr):
			h.writeError(w, http.StatusInternalServerError, "Failed to generate email content: "+genErr.Err.Error())
		default:
			h.logger.Error("failed to generate email", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, generateEmailResponse{Success: true, EmailContent: text})
}

// writePaymentError maps the paypal client's typed errors onto statuses. Raw
// provider bodies are embedded in the detail text and nothing else leaks.
func (h *Handler) writePaymentError(w http.ResponseWriter, err error) {
	var authErr *paypal.AuthError
	var orderErr *paypal.OrderError
	var captureErr *paypal.CaptureError

	switch {
	case errors.As(err, &authErr):
		h.writeError(w, http.StatusInternalServerError, "Failed to get PayPal token: "+authErr.Body)
	case errors.As(err, &orderErr):
		h.writeError(w, http.StatusInternalServerError, "Failed to create PayPal order: "+orderErr.Body)
	case errors.As(err, &captureErr):
		h.writeError(w, http.StatusInternalServerError, "Failed to capture PayPal order: "+captureErr.Body)
	default:
		h.logger.Error("paypal call failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) publishCaptured(ctx context.Context, orderID string, capture json.RawMessage) {
	var result struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(capture, &result)

	event := domain.OrderCapturedEvent{
		EventID:   uuid.New().String(),
		OrderID:   orderID,
		Status:    result.Status,
		Timestamp: time.Now().UTC(),
	}

	if err := h.producer.Publish(ctx, orderID, event); err != nil {
		h.logger.Error("failed to publish order captured event", "error", err, "order_id", orderID)
	}
}

func (h *Handler) count(ctx context.Context, route string) {
	h.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeRawJSON(w http.ResponseWriter, status int, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"detail": message})
}
