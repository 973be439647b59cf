package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// operationObserver bundles the tracing span, metrics and logging of one Store operation.
type operationObserver struct {
	s         *Store
	ctx       context.Context
	operation string
	start     time.Time
	span      SpanContext
}

// startOperation opens a span for the operation and starts its clock.
func (s *Store) startOperation(ctx context.Context, operation string) (context.Context, *operationObserver) {
	observer := &operationObserver{
		s:         s,
		operation: operation,
		start:     time.Now(),
	}

	if s.tracingCollector != nil {
		ctx, observer.span = s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
			spanAttrOperation:   operation,
			spanAttrConsistency: circulation.GetConsistencyLevel(ctx).String(),
		})
	}

	observer.ctx = ctx

	return ctx, observer
}

// finish records the outcome of the operation. Not-found results are regular outcomes, not errors.
func (o *operationObserver) finish(err error) {
	duration := time.Since(o.start)
	status := statusFor(err)

	o.s.recordDuration(o.ctx, metricOperationDuration, duration, o.operation, status)

	switch status {
	case statusConcurrencyConflict:
		o.s.incrementCounter(o.ctx, metricConcurrencyConflicts, o.operation, status)
		o.s.logOperation(o.ctx, logMsgConcurrencyConflict, logAttrOperation, o.operation, logAttrError, err.Error())
	case statusError:
		o.s.incrementCounter(o.ctx, metricDatabaseErrors, o.operation, status)
		o.s.logError(o.ctx, logMsgOperationFailed, err, logAttrOperation, o.operation)
	}

	if o.s.tracingCollector == nil || o.span == nil {
		return
	}

	attrs := map[string]string{
		spanAttrDurationMS: fmt.Sprintf("%.2f", o.s.toMilliseconds(duration)),
	}

	if err != nil && status != statusNotFound {
		attrs[spanAttrError] = err.Error()
	}

	o.span.SetStatus(status)
	o.s.tracingCollector.FinishSpan(o.span, status, attrs)
}

func statusFor(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, circulation.ErrConcurrencyConflict):
		return statusConcurrencyConflict
	case errors.Is(err, circulation.ErrRecordNotFound):
		return statusNotFound
	default:
		return statusError
	}
}

// recordDuration records a duration metric, using the context-aware method when the collector supports it.
func (s *Store) recordDuration(ctx context.Context, metric string, duration time.Duration, operation, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := s.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

// incrementCounter increments a counter metric, using the context-aware method when the collector supports it.
func (s *Store) incrementCounter(ctx context.Context, metric string, operation, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := s.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

// logSQL logs SQL statements with execution time at debug level.
func (s *Store) logSQL(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical failures like closing rows or rolling back.
func (s *Store) logWarn(ctx context.Context, message string, err error) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
		return
	}

	if s.logger != nil {
		s.logger.Warn(message, logAttrError, err.Error())
	}
}

// logError logs error information at the error level.
func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
