package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	submissions   metric.Int64Counter
	signIns       metric.Int64Counter
	invalidations metric.Int64Counter
	assetWrites   metric.Int64Counter
	jobRuns       metric.Int64Counter
	jobDuration   metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "dashboard"
	}
	meter := provider.Meter(name)

	submissions, err := meter.Int64Counter("dashboard_form_submissions_total",
		metric.WithDescription("Form submissions by entity, verb and outcome."))
	if err != nil {
		return nil, err
	}
	signIns, err := meter.Int64Counter("dashboard_sign_ins_total",
		metric.WithDescription("Sign-in attempts by provider and outcome."))
	if err != nil {
		return nil, err
	}
	invalidations, err := meter.Int64Counter("dashboard_view_invalidations_total",
		metric.WithDescription("List view cache invalidations by route."))
	if err != nil {
		return nil, err
	}
	assetWrites, err := meter.Int64Counter("dashboard_asset_writes_total",
		metric.WithDescription("Uploaded asset writes by backend and outcome."))
	if err != nil {
		return nil, err
	}

	jobRuns, err := meter.Int64Counter("dashboard_job_runs_total",
		metric.WithDescription("Background job runs by job and outcome."))
	if err != nil {
		return nil, err
	}
	jobDuration, err := meter.Float64Histogram("dashboard_job_duration_seconds",
		metric.WithDescription("Background job duration."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		submissions:   submissions,
		signIns:       signIns,
		invalidations: invalidations,
		assetWrites:   assetWrites,
		jobRuns:       jobRuns,
		jobDuration:   jobDuration,
	}, nil
}

// RecordSubmission counts one orchestrated form submission.
func (m *Metrics) RecordSubmission(ctx context.Context, entity, verb, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("entity", strings.TrimSpace(entity)),
		attribute.String("verb", strings.TrimSpace(verb)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.submissions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSignIn counts one sign-in attempt.
func (m *Metrics) RecordSignIn(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.signIns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordInvalidation(ctx context.Context, route string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("route", strings.TrimSpace(route)))
	m.invalidations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordAssetWrite(ctx context.Context, backend, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("backend", strings.TrimSpace(backend)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.assetWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordJob counts one background job run and its duration.
func (m *Metrics) RecordJob(ctx context.Context, job, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("job", strings.TrimSpace(job)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.jobRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.jobDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs[:1]...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"entity":      {},
	"verb":        {},
	"outcome":     {},
	"provider":    {},
	"route":       {},
	"backend":     {},
	"job":         {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
