package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is loaded once at startup and passed down explicitly.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"5555"`

	// DBURL wins over the individual DB_* parts when set.
	DBURL      string `env:"DB_URL"`
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"bookshelf"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"bookshelf"`
	DBName     string `env:"DB_NAME" envDefault:"bookshelf"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	// Tokens always live auth.DefaultTTL; only the signing secret is configurable.
	JWTSecret string `env:"JWT_SECRET"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	CORSOrigins  []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	MaxBodyBytes int64    `env:"MAX_BODY_BYTES" envDefault:"10485760"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	BooksCacheTTL time.Duration `env:"BOOKS_CACHE_TTL" envDefault:"30s"`

	ServiceName  string  `env:"SERVICE_NAME" envDefault:"bookshelf-api"`
	OTLPEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	TraceRatio   float64 `env:"OTEL_TRACES_SAMPLE_RATIO" envDefault:"1"`

	SeedUserEmail    string `env:"SEED_USER_EMAIL"`
	SeedUserPassword string `env:"SEED_USER_PASSWORD"`
	SeedUserName     string `env:"SEED_USER_NAME" envDefault:"Demo Reader"`
}

// devSecret is only accepted when APP_ENV=dev.
const devSecret = "dev-only-insecure-secret-change-me"

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is normal outside local dev
	_ = godotenv.Load()

	return Parse(nil)
}

// Parse builds a Config from environment. A non-nil environment map replaces
// the process environment, which keeps tests hermetic.
func Parse(environment map[string]string) (Config, error) {
	var cfg Config

	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DBURL == "" {
		cfg.DBURL = cfg.buildDBURL()
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return Config{}, errors.New("JWT_SECRET is required outside dev")
		}
		cfg.JWTSecret = devSecret
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}

	if cfg.TraceRatio < 0 || cfg.TraceRatio > 1 {
		return Config{}, fmt.Errorf("OTEL_TRACES_SAMPLE_RATIO must be within [0,1]: %v", cfg.TraceRatio)
	}

	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}

func (c Config) buildDBURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}

	return u.String()
}

// Origins returns the configured CORS origins without blanks.
func (c Config) Origins() []string {
	out := make([]string, 0, len(c.CORSOrigins))
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
