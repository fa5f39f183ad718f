package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

type Config struct {
	// Service configuration
	ServiceName string
	Environment string
	HTTPAddr    string

	// Database configuration
	DatabaseURL    string
	DatabaseDriver string

	// OpenAI configuration
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	ChatModel      string
	RouterModel    string
	VisionModel    string
	EmbeddingModel string

	// Timeouts and concurrency
	ChatTimeout      time.Duration
	ConfirmTimeout   time.Duration
	BackendTimeout   time.Duration
	WorkerPoolSize   int
	LockRegistrySize int

	// External services
	BackendURL    string
	YouTubeAPIKey string

	// NATS configuration
	NatsEnabled       bool
	NatsURL           string
	NatsChatSubject   string
	NatsEventsSubject string
	NatsTimeout       time.Duration
	NatsMaxInFlight   int

	// Redis configuration
	RedisURL   string
	ChatStore  string
	HistoryTTL time.Duration

	// Pending action tokens
	ConfirmTokenSecret  string
	ConfirmTokenTTL     time.Duration
	RequireConfirmToken bool

	// Knowledge base
	KnowledgeDir string

	// Chart rendering; empty uses the built-in face
	ChartFontPath string

	// Tracing
	OtelEnabled     bool
	OtelEndpoint    string
	OtelInsecure    bool
	OtelSampleRatio float64

	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Service settings
		ServiceName: getEnv("SERVICE_NAME", "gomech-ai-service"),
		Environment: getEnv("APP_ENV", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),

		// Database settings
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),

		// OpenAI settings
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),
		RouterModel:    getEnv("ROUTER_MODEL", "gpt-4o-mini"),
		VisionModel:    getEnv("VISION_MODEL", "gpt-4o"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		ChatTimeout:      getDurationEnv("CHAT_TIMEOUT", 60*time.Second),
		ConfirmTimeout:   getDurationEnv("CONFIRM_TIMEOUT", 90*time.Second),
		BackendTimeout:   getDurationEnv("BACKEND_TIMEOUT", 10*time.Second),
		WorkerPoolSize:   getIntEnv("WORKER_POOL_SIZE", 4),
		LockRegistrySize: getIntEnv("LOCK_REGISTRY_SIZE", 10000),

		BackendURL:    strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8080"), "/"),
		YouTubeAPIKey: getEnv("YOUTUBE_API_KEY", ""),

		// NATS settings
		NatsEnabled:       getBoolEnv("NATS_ENABLED", false),
		NatsURL:           getEnv("NATS_URL", "nats://localhost:4222"),
		NatsChatSubject:   getEnv("NATS_CHAT_SUBJECT", "assistant.chat"),
		NatsEventsSubject: getEnv("NATS_EVENTS_SUBJECT", "assistant.events"),
		NatsTimeout:       getDurationEnv("NATS_TIMEOUT", 30*time.Second),
		NatsMaxInFlight:   getIntEnv("NATS_MAX_IN_FLIGHT", 32),

		// Redis settings
		RedisURL:   getEnv("REDIS_URL", ""),
		ChatStore:  strings.ToLower(getEnv("CHAT_STORE", "sql")),
		HistoryTTL: getDurationEnv("HISTORY_TTL", 720*time.Hour),

		ConfirmTokenSecret:  getEnv("CONFIRM_TOKEN_SECRET", ""),
		ConfirmTokenTTL:     getDurationEnv("CONFIRM_TOKEN_TTL", 10*time.Minute),
		RequireConfirmToken: getBoolEnv("REQUIRE_CONFIRM_TOKEN", false),

		KnowledgeDir: getEnv("KNOWLEDGE_DIR", ""),

		ChartFontPath: getEnv("CHART_FONT_PATH", ""),

		OtelEnabled:     getBoolEnv("OTEL_ENABLED", false),
		OtelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelInsecure:    getBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampleRatio: getFloatEnv("OTEL_SAMPLER_RATIO", 0.1),

		AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		}),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.WorkerPoolSize < 1 {
		cfg.WorkerPoolSize = 1
	}
	if cfg.NatsMaxInFlight < 1 {
		cfg.NatsMaxInFlight = 1
	}
	return cfg, nil
}

// MissingOptional lists optional variables whose absence degrades the service.
func (c *Config) MissingOptional() []string {
	var missing []string
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.YouTubeAPIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	if os.Getenv("BACKEND_URL") == "" {
		missing = append(missing, "BACKEND_URL")
	}
	return missing
}

// EnvPresence reports which of the variables checked by /status are set.
func (c *Config) EnvPresence() map[string]bool {
	return map[string]bool{
		"DATABASE_URL":    c.DatabaseURL != "",
		"OPENAI_API_KEY":  c.OpenAIAPIKey != "",
		"YOUTUBE_API_KEY": c.YouTubeAPIKey != "",
		"BACKEND_URL":     os.Getenv("BACKEND_URL") != "",
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
