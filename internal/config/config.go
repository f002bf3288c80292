package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/coldfrontcalls/cart-service-go/internal/cart"
	"github.com/coldfrontcalls/cart-service-go/internal/checkout"
	"github.com/coldfrontcalls/cart-service-go/internal/forms"
	"github.com/coldfrontcalls/cart-service-go/internal/middleware"
)

type StorageBackend string

const (
	StoragePostgres StorageBackend = "postgres"
	StorageMemory   StorageBackend = "memory"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	UpstreamTimeout time.Duration

	Storage       StorageBackend
	DatabaseDSN   string
	RunMigrations bool

	// Empty disables the event hand-off.
	RabbitMQURL string
	// Empty disables the form hand-off.
	OrderFormURL  string
	OrderFormName string

	UpsellCatalogFile string
	CartStorageKey    string
	CartCookieName    string
	CookieSecure      bool
	ClearPolicy       checkout.ClearPolicy
	SessionIdleTTL    time.Duration

	CORSAllowOrigins []string
	LogLevel         string
}

// LoadDotEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8081"),
		ShutdownTimeout: parseDuration(getenv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", "8s"), 8*time.Second),

		DatabaseDSN:   getenv("DATABASE_DSN", ""),
		RunMigrations: envBool("RUN_MIGRATIONS", true),

		RabbitMQURL:   getenv("RABBITMQ_URL", ""),
		OrderFormURL:  getenv("ORDER_FORM_URL", ""),
		OrderFormName: getenv("ORDER_FORM_NAME", forms.DefaultFormName),

		UpsellCatalogFile: getenv("UPSELL_CATALOG_FILE", ""),
		CartStorageKey:    getenv("CART_STORAGE_KEY", cart.DefaultStorageKey),
		CartCookieName:    getenv("CART_COOKIE_NAME", middleware.DefaultCartCookie),
		CookieSecure:      envBool("COOKIE_SECURE", false),
		SessionIdleTTL:    parseDuration(getenv("SESSION_IDLE_TTL", "30m"), 30*time.Minute),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "*")),
		LogLevel:         getenv("LOG_LEVEL", "info"),
	}

	switch backend := StorageBackend(strings.ToLower(getenv("STORAGE_BACKEND", string(StoragePostgres)))); backend {
	case StoragePostgres, StorageMemory:
		cfg.Storage = backend
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND: unknown backend %q", backend)
	}
	if cfg.Storage == StoragePostgres && cfg.DatabaseDSN == "" {
		return Config{}, errors.New("DATABASE_DSN is required for the postgres storage backend")
	}

	policy, err := checkout.ParseClearPolicy(getenv("CLEAR_POLICY", "on-success"))
	if err != nil {
		return Config{}, fmt.Errorf("CLEAR_POLICY: %w", err)
	}
	cfg.ClearPolicy = policy

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func envBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
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
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
