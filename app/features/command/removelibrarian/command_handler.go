package removelibrarian

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

// CommandHandler removes a librarian, with retry on concurrency conflicts.
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

// Handle removes the librarian or fails with circulation.ErrLibrarianNotFound.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, h.retryOptions...)

	return shell.NewHandlerResult(retryMetrics), err
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	ctx = circulation.WithStrongConsistency(ctx)

	return h.store.WithinTransaction(ctx, func(txCtx context.Context, repo circulation.Repository) error {
		err := repo.DeleteLibrarian(txCtx, command.LibrarianID)
		if errors.Is(err, circulation.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", circulation.ErrLibrarianNotFound, command.LibrarianID)
		}

		return err
	})
}
