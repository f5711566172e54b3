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
	jobsCreated        metric.Int64Counter
	jobsClosed         metric.Int64Counter
	applications       metric.Int64Counter
	statusChanges      metric.Int64Counter
	planLimitRejected  metric.Int64Counter
	rateLimitAllowed   metric.Int64Counter
	rateLimitDenied    metric.Int64Counter
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
		name = "hirewire"
	}
	meter := provider.Meter(name)

	jobsCreated, err := meter.Int64Counter("hirewire_jobs_created_total")
	if err != nil {
		return nil, err
	}
	jobsClosed, err := meter.Int64Counter("hirewire_jobs_closed_total")
	if err != nil {
		return nil, err
	}
	applications, err := meter.Int64Counter("hirewire_applications_submitted_total")
	if err != nil {
		return nil, err
	}
	statusChanges, err := meter.Int64Counter("hirewire_application_status_changes_total")
	if err != nil {
		return nil, err
	}
	planLimitRejected, err := meter.Int64Counter("hirewire_plan_limit_rejections_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("hirewire_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("hirewire_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		jobsCreated:       jobsCreated,
		jobsClosed:        jobsClosed,
		applications:      applications,
		statusChanges:     statusChanges,
		planLimitRejected: planLimitRejected,
		rateLimitAllowed:  rateLimitAllowed,
		rateLimitDenied:   rateLimitDenied,
	}, nil
}

// RecordJobCreated increments job creation counts.
func (m *Metrics) RecordJobCreated(ctx context.Context, orgTier, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_tier", strings.TrimSpace(orgTier)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.jobsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordJobClosed increments job close counts.
func (m *Metrics) RecordJobClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.jobsClosed.Add(ctx, 1)
}

// RecordApplicationSubmitted increments application submission counts.
func (m *Metrics) RecordApplicationSubmitted(ctx context.Context) {
	if m == nil {
		return
	}
	m.applications.Add(ctx, 1)
}

// RecordStatusChange increments application status transition counts.
func (m *Metrics) RecordStatusChange(ctx context.Context, toStatus string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(toStatus)))
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPlanLimitRejection increments plan limit rejection counts.
func (m *Metrics) RecordPlanLimitRejection(ctx context.Context, orgTier string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("org_tier", strings.TrimSpace(orgTier)))
	m.planLimitRejected.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"org_tier":    {},
	"endpoint":    {},
	"status":      {},
	"status_code": {},
	"reason":      {},
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
