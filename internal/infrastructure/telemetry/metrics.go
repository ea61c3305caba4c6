package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/manufacturing/internal/domain/costplan"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	ServiceName       string
	ServiceVersion    string
	Insecure          bool
}

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   MetricsConfig
}

// NewMeterProvider creates the global meter provider exporting over OTLP gRPC.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger, config: cfg}
	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval == 0 {
		interval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Shutdown flushes pending metrics and stops the provider.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Meter returns a named meter from the provider.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether metrics are enabled.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.config.Enabled && mp.provider != nil
}

// ConversionMetrics counts cost plan conversions. It subscribes to the event bus.
type ConversionMetrics struct {
	processesCreated metric.Int64Counter
	plansAssigned    metric.Int64Counter
}

// NewConversionMetrics registers the conversion counters on meter.
func NewConversionMetrics(meter metric.Meter) (*ConversionMetrics, error) {
	created, err := meter.Int64Counter("production_processes_created_total",
		metric.WithDescription("Production processes created"),
		metric.WithUnit("{process}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create processes counter: %w", err)
	}
	assigned, err := meter.Int64Counter("cost_plan_processes_assigned_total",
		metric.WithDescription("Processes assigned to cost plans"),
		metric.WithUnit("{plan}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignments counter: %w", err)
	}
	return &ConversionMetrics{processesCreated: created, plansAssigned: assigned}, nil
}

// EventTypes returns the events counted.
func (m *ConversionMetrics) EventTypes() []string {
	return []string{production.EventTypeProcessCreated, costplan.EventTypePlanProcessAssigned}
}

// Handle increments the counter matching event.
func (m *ConversionMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	attrs := metric.WithAttributes(attribute.String(SpanAttrTenantID, event.TenantID().String()))
	switch event.EventType() {
	case production.EventTypeProcessCreated:
		m.processesCreated.Add(ctx, 1, attrs)
	case costplan.EventTypePlanProcessAssigned:
		m.plansAssigned.Add(ctx, 1, attrs)
	}
	return nil
}

var _ shared.EventHandler = (*ConversionMetrics)(nil)
