// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server, storage,
// cache, answer-provider and observability settings for the question
// answering backend.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultRefusalSentinel is the sentence the answer provider is instructed to
// return for out-of-domain questions. The classifier treats any answer that
// contains it as a refusal.
const DefaultRefusalSentinel = "This app is only for researching and asking questions about God's word. Please ask a Bible-related question."

// DefaultSystemPrompt instructs the generative provider to stay on topic.
const DefaultSystemPrompt = "You are a knowledgeable Bible study assistant. Answer questions about the Bible, " +
	"its books, people, places, history and teachings clearly and accurately, citing passages where helpful. " +
	"If a question is not related to the Bible or Christian faith, reply with exactly: " + DefaultRefusalSentinel

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-qa-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and addresses the relational store.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite file
	URL    string // Postgres DSN
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend      string        // redis|badger|none
	RedisURL     string        // redis://host:port/db
	BadgerDir    string        // empty = in-memory
	QuestionsTTL time.Duration // TTL for cached answers
}

// ProviderConfig configures the external answer provider.
type ProviderConfig struct {
	Kind               string // openai|local
	APIKey             string
	Model              string
	BaseURL            string
	MaxOutputTokens    int
	RequestTimeout     time.Duration
	MaxHistoryMessages int // 0 = keep the whole transcript
	SystemPrompt       string
	RefusalSentinel    string
	KnowledgePath      string  // markdown corpus for the local provider
	Threshold          float64 // local provider confidence threshold [0,1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 120s, streams run long
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	LogRedact      bool   // scrub PII from access logs
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage and pipeline collaborators
	DB       DBConfig
	Cache    CacheConfig
	Provider ProviderConfig

	// Questions
	MaxQuestionRunes   int // question length cap
	RecentQuestionsMax int // bound of the per-user recent list
	HistoryMaxLimit    int // ceiling on history page size

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

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

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		LogRedact:      getbool("LOG_REDACT", true),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "app.db"),
			URL:    getenv("DATABASE_URL", ""),
		},
		Cache: CacheConfig{
			Backend:      strings.ToLower(getenv("CACHE_BACKEND", "none")),
			RedisURL:     getenv("REDIS_URL", "redis://localhost:6379/0"),
			BadgerDir:    getenv("BADGER_DIR", ""),
			QuestionsTTL: getdur("CACHE_TTL_QUESTIONS", 24*time.Hour),
		},
		Provider: ProviderConfig{
			Kind:               strings.ToLower(getenv("ANSWER_PROVIDER", "openai")),
			APIKey:             getenv("OPENAI_API_KEY", ""),
			Model:              getenv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:            getenv("OPENAI_BASE_URL", ""),
			MaxOutputTokens:    getint("OPENAI_MAX_OUTPUT_TOKENS", 1024),
			RequestTimeout:     getdur("OPENAI_REQUEST_TIMEOUT", 60*time.Second),
			MaxHistoryMessages: getint("OPENAI_MAX_HISTORY_MESSAGES", 10),
			SystemPrompt:       getenv("SYSTEM_PROMPT", DefaultSystemPrompt),
			RefusalSentinel:    getenv("REFUSAL_SENTINEL", DefaultRefusalSentinel),
			KnowledgePath:      getenv("KNOWLEDGE_PATH", "data/knowledge.md"),
			Threshold:          getfloat("THRESHOLD", 0.32),
		},

		MaxQuestionRunes:   getint("MAX_QUESTION_RUNES", 1000),
		RecentQuestionsMax: getint("RECENT_QUESTIONS_MAX", 6),
		HistoryMaxLimit:    getint("HISTORY_MAX_LIMIT", 100),

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-qa-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	cfg.normalize()
	return cfg, cfg.Validate()
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
	switch c.DB.Driver {
	case "postgresql", "pg":
		c.DB.Driver = "postgres"
	}
	switch c.Cache.Backend {
	case "", "off":
		c.Cache.Backend = "none"
	}
}

// rule is a single validation check: when failed holds, msg is reported.
type rule struct {
	failed bool
	msg    string
}

// Validate reports the first violated constraint, in declaration order.
func (c Config) Validate() error {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }
	p := c.Provider

	rules := []rule{
		{!oneOf(c.LogLevel, "debug", "info", "warn", "error", "fatal", "panic"), "LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"},
		{blank(c.Port), "PORT must not be empty"},
		{c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0, "timeouts must be positive durations"},
		{c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0"},

		{!oneOf(c.DB.Driver, "sqlite", "postgres"), "DB_DRIVER must be one of: sqlite, postgres"},
		{c.DB.Driver == "sqlite" && blank(c.DB.Path), "DB_PATH must not be empty"},
		{c.DB.Driver == "postgres" && blank(c.DB.URL), "DATABASE_URL is required when DB_DRIVER=postgres"},

		{!oneOf(c.Cache.Backend, "redis", "badger", "none"), "CACHE_BACKEND must be one of: redis, badger, none"},
		{c.Cache.Backend == "redis" && blank(c.Cache.RedisURL), "REDIS_URL must not be empty when CACHE_BACKEND=redis"},
		{c.Cache.QuestionsTTL <= 0, "CACHE_TTL_QUESTIONS must be > 0"},

		{!oneOf(p.Kind, "openai", "local"), "ANSWER_PROVIDER must be one of: openai, local"},
		{p.Kind == "openai" && blank(p.APIKey), "OPENAI_API_KEY is required when ANSWER_PROVIDER=openai"},
		{p.Kind == "openai" && blank(p.Model), "OPENAI_MODEL must not be empty"},
		{p.Kind == "local" && blank(p.KnowledgePath), "KNOWLEDGE_PATH must not be empty"},
		{p.MaxOutputTokens <= 0, "OPENAI_MAX_OUTPUT_TOKENS must be > 0"},
		{p.RequestTimeout <= 0, "OPENAI_REQUEST_TIMEOUT must be > 0"},
		{p.MaxHistoryMessages < 0, "OPENAI_MAX_HISTORY_MESSAGES must be >= 0"},
		{blank(p.RefusalSentinel), "REFUSAL_SENTINEL must not be empty"},
		{p.Threshold < 0 || p.Threshold > 1, "THRESHOLD must be between 0 and 1"},

		{c.MaxQuestionRunes < 1, "MAX_QUESTION_RUNES must be >= 1"},
		{c.RecentQuestionsMax < 1, "RECENT_QUESTIONS_MAX must be >= 1"},
		{c.HistoryMaxLimit < 1, "HISTORY_MAX_LIMIT must be >= 1"},
		{c.RateRPS < 0, "RATE_RPS must be >= 0"},
		{c.RateBurst < 1, "RATE_BURST must be >= 1"},
		{c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0"},
		{c.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0"},
		{c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]"},
	}
	for _, r := range rules {
		if r.failed {
			return errors.New(r.msg)
		}
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// lookup parses a non-empty variable, falling back to def when it is unset,
// empty or malformed.
func lookup[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func getenv(k, def string) string {
	return lookup(k, def, func(s string) (string, error) { return s, nil })
}

func getint(k string, def int) int { return lookup(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration { return lookup(k, def, time.ParseDuration) }

func getfloat(k string, def float64) float64 {
	return lookup(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

var errNotBool = errors.New("not a boolean")

// getbool accepts 1/0, true/false, yes/no, y/n and on/off in any case.
func getbool(k string, def bool) bool {
	return lookup(k, def, func(s string) (bool, error) {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, errNotBool
	})
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath yields "/" or a path with a leading and no trailing slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
