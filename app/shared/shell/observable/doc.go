// Package observable decorates command and query handlers with metrics, tracing and logging.
//
// The wrappers keep handlers free of observability code: a handler returns its result and error,
// the wrapper classifies the outcome (success, rejected, canceled, timeout, concurrency_conflict, error)
// and reports it to whatever collectors were configured.
package observable
