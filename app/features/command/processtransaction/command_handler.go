package processtransaction

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell"
	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Store defines the interface needed by the CommandHandler to run a unit of work atomically.
type Store interface {
	WithinTransaction(ctx context.Context, fn circulation.TxFunc) error
}

// Result is the persisted Transaction plus the execution metadata of the handler run.
type Result struct {
	Transaction circulation.Transaction
	shell.HandlerResult
}

// CommandHandler runs Validate and Process in one Store transaction and retries on concurrency conflicts.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
	clock        func() time.Time
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithClock sets the source of transaction timestamps.
func WithClock(clock func() time.Time) Option {
	return func(h *CommandHandler) {
		h.clock = clock
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle processes the command with retry logic.
// Business rule violations are returned right away and leave the Store untouched.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var transaction circulation.Transaction

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		transaction, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewHandlerResult(retryMetrics)}, err
	}

	return Result{Transaction: transaction, HandlerResult: shell.NewHandlerResult(retryMetrics)}, nil
}

// executeCommand contains the unit of work that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (circulation.Transaction, error) {
	ctx = circulation.WithStrongConsistency(ctx)

	var transaction circulation.Transaction

	err := h.store.WithinTransaction(ctx, func(txCtx context.Context, repo circulation.Repository) error {
		validated, err := Validate(txCtx, repo, command)
		if err != nil {
			return err
		}

		transaction, err = Process(txCtx, repo, validated, h.clock())

		return err
	})
	if err != nil {
		return circulation.Transaction{}, err
	}

	return transaction, nil
}
