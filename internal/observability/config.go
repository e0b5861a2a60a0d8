package observability

import (
	"strings"

	"github.com/smallbiznis/dashboard/internal/config"
	"github.com/spf13/viper"
)

// Config is the logging, tracing and metrics setup shared by the
// observability providers.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig reads OTEL_* and LOG_* variables, falling back to the
// application config for identity and endpoint.
func LoadConfig(cfg config.Config) Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DEPLOYMENT_ENV", cfg.Environment)
	v.SetDefault("SERVICE_VERSION", cfg.AppVersion)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	v.SetDefault("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	v.SetDefault("OTEL_SAMPLING_RATIO", 0.1)

	protocol := lower(v.GetString("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL"))
	if protocol == "" {
		protocol = lower(v.GetString("OTEL_EXPORTER_OTLP_PROTOCOL"))
	}

	name := strings.TrimSpace(cfg.AppName)
	if name == "" {
		name = "dashboard"
	}

	return Config{
		ServiceName:          name,
		Environment:          strings.TrimSpace(v.GetString("DEPLOYMENT_ENV")),
		Version:              strings.TrimSpace(v.GetString("SERVICE_VERSION")),
		LogLevel:             lower(v.GetString("LOG_LEVEL")),
		LogFormat:            lower(v.GetString("LOG_FORMAT")),
		OtelEnabled:          v.GetBool("OTEL_ENABLED"),
		OtelExporterEndpoint: strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OtelExporterProtocol: protocol,
		OtelSamplingRatio:    samplingRatio(v.GetFloat64("OTEL_SAMPLING_RATIO")),
	}
}

// Debug turns on development logging for local environments or an
// explicit debug level.
func (c Config) Debug() bool {
	if lower(c.LogLevel) == "debug" {
		return true
	}
	switch lower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func samplingRatio(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
