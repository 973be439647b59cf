package config

import (
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/oteladapters"
)

const instrumentationName = "github.com/AntonStoeckl/library-circulation-go"

// Telemetry carries the collectors handlers and stores report to. Nil collectors disable the concern.
type Telemetry struct {
	Metrics circulation.MetricsCollector
	Tracing circulation.TracingCollector
}

// NewTelemetry returns OpenTelemetry-backed collectors when enabled, and an empty Telemetry otherwise.
// The collectors use the global providers, which the embedding program installs.
func NewTelemetry(cfg *Config) Telemetry {
	if !cfg.OTelEnabled {
		return Telemetry{}
	}

	return Telemetry{
		Metrics: oteladapters.NewMetricsCollector(otel.Meter(instrumentationName)),
		Tracing: oteladapters.NewTracingCollector(otel.Tracer(instrumentationName)),
	}
}
