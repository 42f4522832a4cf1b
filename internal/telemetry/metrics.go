package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Instruments are created against the global delegating meter, so they are
// usable (as noops) before InitMetrics runs and start exporting once it does.
var (
	CarrierRequestDuration metric.Float64Histogram
	CarrierFailures        metric.Int64Counter
	RoutesMapped           metric.Int64Counter
	Searches               metric.Int64Counter
	AISMessages            metric.Int64Counter
)

func init() {
	meter := otel.Meter(ServiceName)

	// errors only occur for invalid instrument names
	CarrierRequestDuration, _ = meter.Float64Histogram(
		"carrier.request.duration",
		metric.WithDescription("Duration of carrier API requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	CarrierFailures, _ = meter.Int64Counter(
		"carrier.failures.total",
		metric.WithDescription("Carrier contributions dropped by stage"),
		metric.WithUnit("{failure}"),
	)
	RoutesMapped, _ = meter.Int64Counter(
		"itinerary.routes.mapped",
		metric.WithDescription("Unified routes produced per carrier"),
		metric.WithUnit("{route}"),
	)
	Searches, _ = meter.Int64Counter(
		"itinerary.searches.total",
		metric.WithDescription("Itinerary searches by outcome"),
		metric.WithUnit("{search}"),
	)
	AISMessages, _ = meter.Int64Counter(
		"ais.messages.total",
		metric.WithDescription("AIS stream messages received by type"),
		metric.WithUnit("{message}"),
	)
}

// InitMetrics installs the global meter provider with a periodic OTLP reader.
func InitMetrics() (func(), error) {
	if !MetricsEnabled() {
		slog.Debug("OpenTelemetry metrics is disabled")
		return func() {}, nil
	}

	ctx := context.Background()
	cfg := ExporterConfigFor(SignalMetrics)

	exporter, err := newMetricExporter(ctx, cfg)
	if err != nil {
		slog.Warn("Failed to create OTLP metric exporter, using noop", "error", err)
		return func() {}, nil
	}

	res, err := newResource()
	if err != nil {
		slog.Warn("Failed to create resource, using noop", "error", err)
		return func() {}, nil
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(60*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	slog.Debug("OpenTelemetry metrics initialized", "endpoint", cfg.Endpoint, "protocol", cfg.Protocol)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(ctx); err != nil {
			slog.Error("Error shutting down meter provider", "error", err)
		}
	}, nil
}
