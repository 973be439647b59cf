package removeloaner

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell"
	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Store defines the interface needed by the CommandHandler to run a unit of work atomically.
type Store interface {
	WithinTransaction(ctx context.Context, fn circulation.TxFunc) error
}

// CommandHandler removes a loaner who holds no books, with retry on concurrency conflicts.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle removes the loaner. It fails with circulation.ErrLoanerNotFound for unknown loaners
// and with circulation.ErrLoanerHasOpenLoans while the loaner still holds copies.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, h.retryOptions...)

	return shell.NewHandlerResult(retryMetrics), err
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	ctx = circulation.WithStrongConsistency(ctx)

	return h.store.WithinTransaction(ctx, func(txCtx context.Context, repo circulation.Repository) error {
		if _, err := repo.FindLoanerByID(txCtx, command.LoanerID); err != nil {
			if errors.Is(err, circulation.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", circulation.ErrLoanerNotFound, command.LoanerID)
			}

			return err
		}

		openLoans, err := repo.FindOpenLoans(txCtx, command.LoanerID)
		if err != nil {
			return err
		}

		if len(openLoans) > 0 {
			return fmt.Errorf("%w: loaner %s holds %d loans", circulation.ErrLoanerHasOpenLoans, command.LoanerID, len(openLoans))
		}

		return repo.DeleteLoaner(txCtx, command.LoanerID)
	})
}
