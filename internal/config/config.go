// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings such as
// server timeouts, logging, database connection and pool limits, the policy
// file location, caching, rate limiting, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// DBConfig selects the SQL backend and bounds its connection pool.
type DBConfig struct {
	Driver       string        // sqlite|postgres|mysql
	Path         string        // SQLite file path (driver=sqlite)
	DSN          string        // connection string (driver=postgres|mysql)
	MaxOpenConns int           // hard cap on concurrent connections
	MaxIdleConns int           // idle connections kept warm
	ConnMaxLife  time.Duration // recycle connections after this long
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	RequestTimeout    time.Duration // per-operation persistence deadline

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DB DBConfig

	// Authorization policy file (YAML/JSON/TOML, read by viper)
	PolicyFile string

	// Cache (empty RedisURL disables caching)
	RedisURL string
	CacheTTL time.Duration

	// Votes
	VoteMaxAttempts int // compare-and-swap retries per vote

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL           time.Duration // how long a given Idempotency-Key is valid
	IdempotencyPurgeSchedule string        // cron spec for purging expired keys

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadDotEnv reads a .env file into the process environment when present.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads configuration from the environment, applies defaults and
// normalization, and validates the result. Every problem is reported, joined,
// so a misconfigured deployment fails once with the full list. A malformed
// value is an error rather than a silent fallback to the default.
func Load() (Config, error) {
	var env envReader
	cfg := Config{
		Port:              env.str("PORT", "8080"),
		ReadTimeout:       env.duration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: env.duration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      env.duration("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       env.duration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    env.integer("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(env.str("GIN_MODE", "release")),
		RequestTimeout:    env.duration("REQUEST_TIMEOUT", 5*time.Second),

		LogLevel:       strings.ToLower(env.str("LOG_LEVEL", "info")),
		LogPretty:      env.boolean("LOG_PRETTY", false),
		SwaggerEnabled: env.boolean("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(env.str("API_BASE_PATH", "/")),

		DB: DBConfig{
			Driver:       strings.ToLower(env.str("DB_DRIVER", "sqlite")),
			Path:         env.str("DB_PATH", "feedback.db"),
			DSN:          env.str("DB_DSN", ""),
			MaxOpenConns: env.integer("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: env.integer("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLife:  env.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},

		PolicyFile: env.str("POLICY_FILE", "policy.yaml"),

		RedisURL: env.str("REDIS_URL", ""),
		CacheTTL: env.duration("CACHE_TTL", 30*time.Second),

		VoteMaxAttempts: env.integer("VOTE_MAX_ATTEMPTS", 8),

		RateRPS:   env.float("RATE_RPS", 20.0),
		RateBurst: env.integer("RATE_BURST", 40),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(env.str("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: env.boolean("ENABLE_HSTS", false),
			HSTSMaxAge: env.duration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL:           env.duration("IDEMPOTENCY_TTL", 24*time.Hour),
		IdempotencyPurgeSchedule: env.str("IDEMPOTENCY_PURGE_SCHEDULE", "@hourly"),

		OTEL: OTELConfig{
			Enabled:     env.boolean("OTEL_ENABLED", false),
			Endpoint:    env.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    env.boolean("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: env.str("OTEL_SERVICE_NAME", "feedback-api"),
			SampleRatio: env.float("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}
	cfg.normalize()
	return cfg, errors.Join(append(env.errs, cfg.problems()...)...)
}

func (c *Config) normalize() {
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
	if c.DB.Driver == "postgresql" {
		c.DB.Driver = "postgres"
	}
	c.DB.MaxIdleConns = min(c.DB.MaxIdleConns, c.DB.MaxOpenConns)
}

// problems lists every failed constraint.
func (c Config) problems() []error {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }
	rules := []struct {
		bad bool
		msg string
	}{
		{!oneOf(c.LogLevel, "debug", "info", "warn", "error", "fatal", "panic"),
			"LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"},
		{blank(c.Port), "PORT must not be empty"},
		{c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0,
			"timeouts must be positive durations"},
		{c.RequestTimeout <= 0, "REQUEST_TIMEOUT must be > 0"},
		{c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0"},
		{!oneOf(c.DB.Driver, "sqlite", "postgres", "mysql"), "DB_DRIVER must be one of: sqlite, postgres, mysql"},
		{c.DB.Driver == "sqlite" && blank(c.DB.Path), "DB_PATH must not be empty"},
		{(c.DB.Driver == "postgres" || c.DB.Driver == "mysql") && blank(c.DB.DSN),
			"DB_DSN must not be empty for " + c.DB.Driver},
		{c.DB.MaxOpenConns < 1, "DB_MAX_OPEN_CONNS must be >= 1"},
		{c.DB.MaxIdleConns < 0, "DB_MAX_IDLE_CONNS must be >= 0"},
		{blank(c.PolicyFile), "POLICY_FILE must not be empty"},
		{c.CacheTTL <= 0, "CACHE_TTL must be > 0"},
		{c.VoteMaxAttempts < 1, "VOTE_MAX_ATTEMPTS must be >= 1"},
		{c.RateRPS < 0, "RATE_RPS must be >= 0"},
		{c.RateBurst < 1, "RATE_BURST must be >= 1"},
		{c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0"},
		{c.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0"},
		{blank(c.IdempotencyPurgeSchedule), "IDEMPOTENCY_PURGE_SCHEDULE must not be empty"},
		{c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]"},
	}
	var errs []error
	for _, r := range rules {
		if r.bad {
			errs = append(errs, errors.New(r.msg))
		}
	}
	return errs
}

// Addr returns the listen address for net/http.
func (c Config) Addr() string { return ":" + c.Port }

func oneOf(v string, allowed ...string) bool {
	return slices.Contains(allowed, v)
}

// envReader reads typed variables. Unset or empty variables yield the
// default; unparsable ones yield the default and record an error.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	return v, ok && v != ""
}

func (r *envReader) fail(k, v, want string) {
	r.errs = append(r.errs, fmt.Errorf("%s: %q is not a valid %s", k, v, want))
}

func (r *envReader) str(k, def string) string {
	if v, ok := r.lookup(k); ok {
		return v
	}
	return def
}

func (r *envReader) integer(k string, def int) int {
	v, ok := r.lookup(k)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.fail(k, v, "integer")
		return def
	}
	return i
}

func (r *envReader) float(k string, def float64) float64 {
	v, ok := r.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		r.fail(k, v, "number")
		return def
	}
	return f
}

func (r *envReader) boolean(k string, def bool) bool {
	v, ok := r.lookup(k)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	r.fail(k, v, "boolean")
	return def
}

func (r *envReader) duration(k string, def time.Duration) time.Duration {
	v, ok := r.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		r.fail(k, v, "duration")
		return def
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath returns "/" or a path with a leading and no trailing slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
