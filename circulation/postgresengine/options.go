package postgresengine

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Logger is the basic logger the Store accepts, see circulation.Logger.
type Logger = circulation.Logger

// ContextualLogger is the context-aware logger the Store accepts, see circulation.ContextualLogger.
type ContextualLogger = circulation.ContextualLogger

// MetricsCollector is the metrics collector the Store accepts, see circulation.MetricsCollector.
type MetricsCollector = circulation.MetricsCollector

// TracingCollector is the tracing collector the Store accepts, see circulation.TracingCollector.
type TracingCollector = circulation.TracingCollector

// SpanContext is an active tracing span, see circulation.SpanContext.
type SpanContext = circulation.SpanContext

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithSchema makes the Store address its tables in the given schema instead of the search path default.
func WithSchema(schema string) Option {
	return func(s *Store) error {
		if schema == "" {
			return circulation.ErrEmptySchemaNameSupplied
		}

		s.schema = schema

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: transaction outcomes, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives operation durations, database errors and concurrency conflicts.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every repository operation and every transaction gets its own span.
func WithTracing(collector TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When both loggers are configured, the contextual logger wins.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}
