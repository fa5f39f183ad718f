package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.Nil(t, cfg)
	require.True(t, errors.Is(err, ErrMissingDatabaseURL))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gomech")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("BACKEND_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 60*time.Second, cfg.ChatTimeout)
	assert.Greater(t, cfg.ConfirmTimeout, cfg.ChatTimeout)
	assert.Equal(t, 4, cfg.WorkerPoolSize)
	assert.Equal(t, 32, cfg.NatsMaxInFlight)
	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.ElementsMatch(t, []string{"OPENAI_API_KEY", "YOUTUBE_API_KEY", "BACKEND_URL"}, cfg.MissingOptional())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("CHAT_TIMEOUT", "5s")
	t.Setenv("WORKER_POOL_SIZE", "0")
	t.Setenv("NATS_MAX_IN_FLIGHT", "-3")
	t.Setenv("REQUIRE_CONFIRM_TOKEN", "yes")
	t.Setenv("BACKEND_URL", "http://backend:8080/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.gomech.com, ,https://admin.gomech.com")
	t.Setenv("CHART_FONT_PATH", "/usr/share/fonts/DejaVuSans.ttf")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 5*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 1, cfg.WorkerPoolSize)
	assert.Equal(t, 1, cfg.NatsMaxInFlight)
	assert.True(t, cfg.RequireConfirmToken)
	assert.Equal(t, "http://backend:8080", cfg.BackendURL)
	assert.Equal(t, []string{"https://app.gomech.com", "https://admin.gomech.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.EnvPresence()["BACKEND_URL"])
	assert.Equal(t, "/usr/share/fonts/DejaVuSans.ttf", cfg.ChartFontPath)
}

func TestLoadTracing(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gomech")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, 0.5, cfg.OtelSampleRatio)
	assert.Equal(t, "collector:4318", cfg.OtelEndpoint)
	assert.False(t, cfg.OtelInsecure)
}
