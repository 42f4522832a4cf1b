// Package telemetry wires OpenTelemetry tracing, metrics and Pyroscope
// profiling. Everything is opt-in through environment variables and falls
// back to a noop when disabled or misconfigured.
package telemetry

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const ServiceName = "carrier-itineraries"

// Version is overridden at build time with -ldflags "-X .../telemetry.Version=x.y.z".
var Version = "dev"

type Protocol string

const (
	ProtocolGRPC Protocol = "grpc"
	ProtocolHTTP Protocol = "http/protobuf"
)

type Signal string

const (
	SignalTraces  Signal = "traces"
	SignalMetrics Signal = "metrics"
)

type ExporterConfig struct {
	Endpoint string
	Protocol Protocol
	Headers  map[string]string
	Timeout  time.Duration
	Insecure bool
}

func TracingEnabled() bool { return isTrue(os.Getenv("OTEL_TRACING_ENABLED")) }
func MetricsEnabled() bool { return isTrue(os.Getenv("OTEL_METRICS_ENABLED")) }
func ProfilingEnabled() bool { return isTrue(os.Getenv("PYROSCOPE_PROFILING_ENABLED")) }

// ExporterConfigFor resolves OTEL_EXPORTER_OTLP_<SIGNAL>_* with fallback to the
// signal-less OTEL_EXPORTER_OTLP_* variables.
func ExporterConfigFor(signal Signal) ExporterConfig {
	upper := strings.ToUpper(string(signal))
	lookup := func(suffix, def string) string {
		if v := os.Getenv("OTEL_EXPORTER_OTLP_" + upper + "_" + suffix); v != "" {
			return v
		}
		if v := os.Getenv("OTEL_EXPORTER_OTLP_" + suffix); v != "" {
			return v
		}
		return def
	}

	protocol := ProtocolHTTP
	if strings.EqualFold(lookup("PROTOCOL", ""), string(ProtocolGRPC)) {
		protocol = ProtocolGRPC
	}

	endpoint := lookup("ENDPOINT", "")
	if endpoint == "" {
		if protocol == ProtocolGRPC {
			endpoint = "localhost:4317"
		} else {
			endpoint = "http://localhost:4318/v1/" + string(signal)
		}
	}

	insecure := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "localhost")
	if v := lookup("INSECURE", ""); v != "" {
		insecure = isTrue(v)
	}

	// grpc wants host:port only
	if protocol == ProtocolGRPC {
		endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
		if i := strings.Index(endpoint, "/"); i != -1 {
			endpoint = endpoint[:i]
		}
	}

	return ExporterConfig{
		Endpoint: endpoint,
		Protocol: protocol,
		Headers:  parseHeaders(lookup("HEADERS", "")),
		Timeout:  parseTimeout(lookup("TIMEOUT", "10s")),
		Insecure: insecure,
	}
}

// parseHeaders reads "k1=v1,k2=v2". Values keep everything after the first '='.
func parseHeaders(s string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if i := strings.Index(pair, "="); i > 0 {
			headers[strings.TrimSpace(pair[:i])] = pair[i+1:]
		}
	}
	return headers
}

// parseTimeout accepts Go durations and OTLP-style bare milliseconds.
func parseTimeout(s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return 10 * time.Second
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
