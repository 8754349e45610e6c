package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
)

type PayPal struct {
	ClientID     string
	ClientSecret string
	APIBase      string
	PayeeEmail   string
}

type Config struct {
	Port            string
	UpstreamTimeout time.Duration

	PayPal PayPal

	ExchangeAPIKey  string
	ExchangeAPIBase string

	GeminiAPIKey string

	// Firestore service account: base64-encoded JSON wins over the file fallback.
	FirebaseCredentialsB64  string
	FirebaseCredentialsFile string
	ProductsCollection      string

	KafkaBrokers []string

	CORSAllowOrigins []string
}

// Load reads configuration from the environment. Missing provider credentials
// are not an error here: the affected routes degrade at request time instead of
// failing startup.
func Load() Config {
	return Config{
		Port:            getenv("PORT", "8080"),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),

		PayPal: PayPal{
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			APIBase:      os.Getenv("PAYPAL_API_BASE"),
			PayeeEmail:   os.Getenv("PAYPAL_SANDBOX_EMAIL"),
		},

		ExchangeAPIKey:  os.Getenv("OPEN_EXCHANGE_RATES_API_KEY"),
		ExchangeAPIBase: getenv("OPEN_EXCHANGE_RATES_API_BASE", "https://open.er-api.com"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		FirebaseCredentialsB64:  os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64"),
		FirebaseCredentialsFile: getenv("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json"),
		ProductsCollection:      getenv("PRODUCTS_COLLECTION", "products"),

		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "*")),
	}
}

// FirebaseCredentialsJSON returns the decoded service account JSON, preferring
// the base64 env var and falling back to the local credential file.
func (c Config) FirebaseCredentialsJSON() ([]byte, error) {
	if c.FirebaseCredentialsB64 != "" {
		creds, err := base64.StdEncoding.DecodeString(c.FirebaseCredentialsB64)
		if err != nil {
			return nil, fmt.Errorf("decode FIREBASE_SERVICE_ACCOUNT_BASE64: %w", err)
		}
		return creds, nil
	}

	creds, err := os.ReadFile(c.FirebaseCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return creds, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
