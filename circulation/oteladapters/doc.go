// Package oteladapters implements the circulation observability interfaces on top of OpenTelemetry.
//
// The circulation packages only know their own small Logger, MetricsCollector and TracingCollector
// interfaces. This package plugs them into whatever OpenTelemetry providers the application installs:
//
//	metrics := oteladapters.NewMetricsCollector(otel.Meter("circulation"))
//	tracing := oteladapters.NewTracingCollector(otel.Tracer("circulation"))
//	logger := oteladapters.NewSlogBridgeLogger("circulation")
//
// Without installed providers the global no-op implementations are used, so wiring the adapters is always safe.
package oteladapters
