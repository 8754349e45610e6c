package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tumima88/my-be/internal/api"
	"github.com/tumima88/my-be/internal/catalog"
	"github.com/tumima88/my-be/internal/config"
	"github.com/tumima88/my-be/internal/exchange"
	"github.com/tumima88/my-be/internal/gemini"
	"github.com/tumima88/my-be/internal/messaging"
	"github.com/tumima88/my-be/internal/middleware"
	"github.com/tumima88/my-be/internal/paypal"
	"github.com/tumima88/my-be/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "storefront-gateway", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("storefront-gateway", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	// Firestore is optional at startup: a failed connection degrades the
	// products route instead of aborting.
	firestoreClient := connectFirestore(ctx, cfg, logger)
	if firestoreClient != nil {
		defer func() { _ = firestoreClient.Close() }()
	}
	store := catalog.NewStore(firestoreClient, cfg.ProductsCollection)

	httpClient := &http.Client{
		Timeout:   cfg.UpstreamTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	payments := paypal.NewClient(cfg.PayPal.APIBase, cfg.PayPal.ClientID, cfg.PayPal.ClientSecret, cfg.PayPal.PayeeEmail, httpClient)
	rates := exchange.NewClient(cfg.ExchangeAPIBase, cfg.ExchangeAPIKey, httpClient)

	generator, err := gemini.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Error("failed to configure gemini client", "error", err)
		os.Exit(1)
	}
	if !generator.Configured() {
		logger.Warn("gemini API key not set, generation route degraded")
	}

	var producer *messaging.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = messaging.NewProducer(cfg.KafkaBrokers, messaging.TopicOrderCaptured)
		defer func() { _ = producer.Close() }()
	}

	handler, err := api.NewHandler(store, payments, rates, generator, producer, logger)
	if err != nil {
		logger.Error("failed to create handler", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", telemetry.WithHTTPRoute(handler.HandleRoot))
	mux.HandleFunc("GET /api/products", telemetry.WithHTTPRoute(handler.HandleListProducts))
	mux.HandleFunc("POST /api/paypal/create-order", telemetry.WithHTTPRoute(handler.HandleCreateOrder))
	mux.HandleFunc("POST /api/paypal/capture-order", telemetry.WithHTTPRoute(handler.HandleCaptureOrder))
	mux.HandleFunc("GET /api/convert-currency", telemetry.WithHTTPRoute(handler.HandleConvertCurrency))
	mux.HandleFunc("POST /api/gemini/generate-email", telemetry.WithHTTPRoute(handler.HandleGenerateEmail))
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: middleware.CORS(cfg.CORSAllowOrigins)(
			otelhttp.NewHandler(mux, "storefront-gateway",
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					if r.Pattern != "" {
						return r.Pattern
					}
					return r.Method + " " + r.URL.Path
				}),
			),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting storefront gateway", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func connectFirestore(ctx context.Context, cfg config.Config, logger *slog.Logger) *firestore.Client {
	creds, err := cfg.FirebaseCredentialsJSON()
	if err != nil {
		logger.Error("firebase credentials unavailable", "error", err)
		return nil
	}

	client, err := catalog.Connect(ctx, creds)
	if err != nil {
		logger.Error("firestore connection failed", "error", err)
		return nil
	}

	logger.Info("firestore connection established")
	return client
}
