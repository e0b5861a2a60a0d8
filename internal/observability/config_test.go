package observability

import (
	"testing"

	"github.com/smallbiznis/dashboard/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "")

	cfg := LoadConfig(config.Config{AppName: "", Environment: "production", AppVersion: "1.2.3"})

	assert.Equal(t, "dashboard", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.False(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
}

func TestDebugInDevelopment(t *testing.T) {
	assert.True(t, Config{Environment: "development"}.Debug())
	assert.True(t, Config{Environment: "production", LogLevel: "debug"}.Debug())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")
	t.Setenv("OTEL_SAMPLING_RATIO", "4")

	cfg := LoadConfig(config.Config{AppName: "billing-admin", Environment: "production"})

	assert.Equal(t, "billing-admin", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
	assert.True(t, cfg.Debug())
}
