// README: Config loader: .env file, environment overrides and defaults for HTTP, AI, DB, Redis, Maps and limits.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AIConfig struct {
	APIKey        string
	MaxCandidates int
	Timeout       time.Duration
}

type LimitsConfig struct {
	RatePerMinute int
	MonthlyTokens int
}

type Config struct {
	Env string
	Log struct {
		Level string
	}
	HTTP struct {
		Addr string
		// TrustedProxies may set X-Forwarded-For; empty means client IP is the peer address.
		TrustedProxies []string
	}
	DB struct {
		// DSN empty disables the monthly quota.
		DSN string
	}
	Redis struct {
		// Addr empty selects the in-memory rate limiter.
		Addr string
	}
	Maps struct {
		// APIKey empty disables the road-distance cross-check.
		APIKey string
	}
	Firebase struct {
		// ProjectID empty disables ID-token identities.
		ProjectID       string
		CredentialsFile string
	}
	AI     AIConfig
	Limits LimitsConfig
}

var defaults = map[string]any{
	"ECO_ENV":                "development",
	"ECO_LOG_LEVEL":          "info",
	"ECO_HTTP_ADDR":          ":8080",
	"ECO_TRUSTED_PROXIES":    "",
	"ECO_DB_DSN":             "",
	"ECO_REDIS_ADDR":         "",
	"ECO_MAPS_API_KEY":       "",
	"ECO_FIREBASE_PROJECT":   "",
	"ECO_FIREBASE_CREDS":     "",
	"ECO_AI_MAX_CANDIDATES":  8,
	"ECO_AI_TIMEOUT":         "60s",
	"ECO_RATE_LIMIT_PER_MIN": 20,
	"ECO_MONTHLY_TOKENS":     100,
	"GOOGLE_API_KEY":         "",
	"GEMINI_API_KEY":         "",
}

// Load reads .env (when present) and the process environment.
// A missing API key is not an error here; callers surface it as a configuration failure.
func Load() (Config, error) {
	loadEnvFile()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	cfg.Env = v.GetString("ECO_ENV")
	cfg.Log.Level = v.GetString("ECO_LOG_LEVEL")
	cfg.HTTP.Addr = v.GetString("ECO_HTTP_ADDR")
	cfg.HTTP.TrustedProxies = splitList(v.GetString("ECO_TRUSTED_PROXIES"))
	cfg.DB.DSN = v.GetString("ECO_DB_DSN")
	cfg.Redis.Addr = v.GetString("ECO_REDIS_ADDR")
	cfg.Maps.APIKey = v.GetString("ECO_MAPS_API_KEY")
	cfg.Firebase.ProjectID = v.GetString("ECO_FIREBASE_PROJECT")
	cfg.Firebase.CredentialsFile = v.GetString("ECO_FIREBASE_CREDS")

	cfg.AI.APIKey = strings.TrimSpace(v.GetString("GOOGLE_API_KEY"))
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = strings.TrimSpace(v.GetString("GEMINI_API_KEY"))
	}
	cfg.AI.MaxCandidates = v.GetInt("ECO_AI_MAX_CANDIDATES")
	cfg.AI.Timeout = v.GetDuration("ECO_AI_TIMEOUT")

	cfg.Limits.RatePerMinute = v.GetInt("ECO_RATE_LIMIT_PER_MIN")
	cfg.Limits.MonthlyTokens = v.GetInt("ECO_MONTHLY_TOKENS")

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("ECO_HTTP_ADDR must not be empty")
	}
	for _, p := range c.HTTP.TrustedProxies {
		if _, _, err := net.ParseCIDR(p); err != nil && net.ParseIP(p) == nil {
			return fmt.Errorf("ECO_TRUSTED_PROXIES: %q is not an IP or CIDR", p)
		}
	}
	if c.AI.MaxCandidates <= 0 {
		return fmt.Errorf("ECO_AI_MAX_CANDIDATES must be positive, got %d", c.AI.MaxCandidates)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ECO_AI_TIMEOUT must be positive")
	}
	if c.Limits.RatePerMinute <= 0 {
		return fmt.Errorf("ECO_RATE_LIMIT_PER_MIN must be positive, got %d", c.Limits.RatePerMinute)
	}
	if c.Limits.MonthlyTokens <= 0 {
		return fmt.Errorf("ECO_MONTHLY_TOKENS must be positive, got %d", c.Limits.MonthlyTokens)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsProduction reports whether ECO_ENV selects production logging.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// loadEnvFile loads the first .env found in the working directory or its parents.
// Existing environment variables win over the file.
func loadEnvFile() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}
