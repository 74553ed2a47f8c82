package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env  string
	Port int

	BackendBaseURL string
	// HTTPTimeout of zero means no client timeout.
	HTTPTimeout time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	SessionFile   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// DBURL is empty unless DB_HOST or DB_URL is set; contact messages are
	// then kept in memory.
	DBURL string

	OTelEndpoint string
	CORSOrigins  []string
}

// Load reads .env (when present) and the process environment. Callers that
// bind CLI flags pass their viper instance; nil uses a fresh one.
func Load(v *viper.Viper) (Config, error) {
	_ = godotenv.Load()

	if v == nil {
		v = viper.New()
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	setDefaults(v)

	// the web client's variable name is honoured as an alias
	if v.GetString("BACKEND_BASE_URL") == "" {
		if alt := os.Getenv("VITE_LOCAL_BACKENDURL"); alt != "" {
			v.Set("BACKEND_BASE_URL", alt)
		}
	}

	cfg := Config{
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetInt("PORT"),
		BackendBaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		HTTPTimeout:    v.GetDuration("HTTP_TIMEOUT"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		SessionFile:    v.GetString("SESSION_FILE"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		DBURL:          buildDBURL(v),
		OTelEndpoint:   v.GetString("OTEL_ENDPOINT"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PORT", 8080)
	v.SetDefault("BACKEND_BASE_URL", "")
	v.SetDefault("HTTP_TIMEOUT", "0s")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_FILE", defaultSessionFile())
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DB_URL", "")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "impactfest")
	v.SetDefault("DB_PASSWORD", "impactfest")
	v.SetDefault("DB_NAME", "impactfest")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("OTEL_ENDPOINT", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
}

func (c Config) validate() error {
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("config: HTTP_TIMEOUT must not be negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	return nil
}

// RequireBackend is checked by commands that talk to the festival API.
func (c Config) RequireBackend() error {
	if c.BackendBaseURL == "" {
		return fmt.Errorf("config: BACKEND_BASE_URL is required")
	}
	return nil
}

func (c Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

func buildDBURL(v *viper.Viper) string {
	if u := v.GetString("DB_URL"); u != "" {
		return u
	}
	host := v.GetString("DB_HOST")
	if host == "" {
		return ""
	}

	return "postgres://" + v.GetString("DB_USER") + ":" + v.GetString("DB_PASSWORD") +
		"@" + host + ":" + v.GetString("DB_PORT") + "/" + v.GetString("DB_NAME") +
		"?sslmode=" + v.GetString("DB_SSLMODE")
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".impactfest", "session.json")
	}
	return filepath.Join(dir, "impactfest", "session.json")
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

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
