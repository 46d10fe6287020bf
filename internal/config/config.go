package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultMetricsAddr     = ":9090"
	defaultAuthProvider    = "memory"
	defaultAuthTimeout     = 10 * time.Second
	defaultSessionLifetime = 24 * time.Hour
	defaultVaultKVMount    = "secret"

	defaultSupplierModeSource = "toggle"
	defaultVendorModeSource   = "path"
)

type Config struct {
	DatabaseURL      string
	HTTPAddr         string
	MetricsAddr      string
	AuthProvider     string
	AuthTimeout      time.Duration
	AuthCookieSecure bool
	SessionLifetime  time.Duration

	SupplierModeSource string
	VendorModeSource   string

	SupabaseURL     string
	SupabaseAnonKey string

	CognitoRegion          string
	CognitoClientID        string
	CognitoClientSecret    string
	CognitoAccessKeyID     string
	CognitoSecretAccessKey string

	MemoryUsers string

	VaultAddr       string
	VaultToken      string
	VaultKVMount    string
	VaultSecretPath string
}

type LoadOptions struct {
	RequireDatabaseURL bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: true})
}

func LoadOptionalDB() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: false})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:         getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:      getenvDefault("METRICS_ADDR", defaultMetricsAddr),
		AuthProvider:     strings.ToLower(strings.TrimSpace(getenvDefault("AUTH_PROVIDER", defaultAuthProvider))),
		AuthTimeout:      getenvDurationDefault("AUTH_TIMEOUT", defaultAuthTimeout),
		AuthCookieSecure: getenvBoolDefault("AUTH_COOKIE_SECURE", false),
		SessionLifetime:  getenvDurationDefault("SESSION_LIFETIME", defaultSessionLifetime),

		SupplierModeSource: strings.ToLower(strings.TrimSpace(getenvDefault("SUPPLIER_MODE_SOURCE", defaultSupplierModeSource))),
		VendorModeSource:   strings.ToLower(strings.TrimSpace(getenvDefault("VENDOR_MODE_SOURCE", defaultVendorModeSource))),

		SupabaseURL:     strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		SupabaseAnonKey: strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")),

		CognitoRegion:          strings.TrimSpace(os.Getenv("COGNITO_REGION")),
		CognitoClientID:        strings.TrimSpace(os.Getenv("COGNITO_CLIENT_ID")),
		CognitoClientSecret:    strings.TrimSpace(os.Getenv("COGNITO_CLIENT_SECRET")),
		CognitoAccessKeyID:     strings.TrimSpace(os.Getenv("COGNITO_ACCESS_KEY_ID")),
		CognitoSecretAccessKey: strings.TrimSpace(os.Getenv("COGNITO_SECRET_ACCESS_KEY")),

		MemoryUsers: os.Getenv("MEMORY_USERS"),

		VaultAddr:       strings.TrimSpace(os.Getenv("VAULT_ADDR")),
		VaultToken:      strings.TrimSpace(os.Getenv("VAULT_TOKEN")),
		VaultKVMount:    strings.Trim(strings.TrimSpace(getenvDefault("VAULT_KV_MOUNT", defaultVaultKVMount)), "/"),
		VaultSecretPath: strings.Trim(strings.TrimSpace(os.Getenv("VAULT_SECRET_PATH")), "/"),
	}

	switch cfg.AuthProvider {
	case "memory", "supabase", "cognito":
	default:
		return cfg, fmt.Errorf("AUTH_PROVIDER must be one of: memory, supabase, cognito")
	}
	for key, v := range map[string]string{
		"SUPPLIER_MODE_SOURCE": cfg.SupplierModeSource,
		"VENDOR_MODE_SOURCE":   cfg.VendorModeSource,
	} {
		if v != "path" && v != "toggle" {
			return cfg, fmt.Errorf("%s must be one of: path, toggle", key)
		}
	}
	if cfg.VaultAddr != "" && cfg.VaultSecretPath == "" {
		return cfg, errors.New("VAULT_SECRET_PATH is required when VAULT_ADDR is set")
	}

	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

// VaultEnabled reports whether provider secrets may be read from Vault.
func (c Config) VaultEnabled() bool {
	return c.VaultAddr != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
