package shell

import "time"

// HandlerResult carries the execution metadata of a command handler run
// without coupling the handler to specific observability implementations.
type HandlerResult struct {
	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the final error encountered during retries.
	// Values: "none", "concurrency_conflict", "business_rule_violation",
	// "context_canceled", "context_deadline_exceeded", "other".
	LastErrorType string

	// RetriesExhausted is true only when every attempt failed with a retryable error.
	RetriesExhausted bool
}

// Outcome returns the result itself, so handlers without a payload can return a plain HandlerResult.
func (r HandlerResult) Outcome() HandlerResult {
	return r
}

// NewHandlerResult converts retry metrics into a HandlerResult.
func NewHandlerResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
