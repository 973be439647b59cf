package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract the circulation rules work against.
//
// Find* methods return ErrRecordNotFound (possibly joined with more context) when nothing matches.
// SaveBook and SaveLoaner implement optimistic locking: a Version of 0 inserts a new row,
// any other Version updates the row only if the stored version still matches, otherwise
// they fail with ErrConcurrencyConflict. The returned entity carries the new Version.
type Repository interface {
	FindBookByID(ctx context.Context, bookID uuid.UUID) (Book, error)
	SaveBook(ctx context.Context, book Book) (Book, error)

	FindLoanerByID(ctx context.Context, loanerID uuid.UUID) (Loaner, error)
	SaveLoaner(ctx context.Context, loaner Loaner) (Loaner, error)
	DeleteLoaner(ctx context.Context, loanerID uuid.UUID) error

	FindLibrarianByID(ctx context.Context, librarianID uuid.UUID) (Librarian, error)
	SaveLibrarian(ctx context.Context, librarian Librarian) error
	DeleteLibrarian(ctx context.Context, librarianID uuid.UUID) error

	FindOpenLoans(ctx context.Context, loanerID uuid.UUID) (Loans, error)
	FindOverdueLoans(ctx context.Context, asOf time.Time) (Loans, error)
	SaveLoan(ctx context.Context, loan Loan) error
	DeleteLoan(ctx context.Context, loanID uuid.UUID) error

	FindTransactionByID(ctx context.Context, transactionID uuid.UUID) (Transaction, error)
	FindTransactionsByLoaner(ctx context.Context, loanerID uuid.UUID) (Transactions, error)
	SaveTransaction(ctx context.Context, transaction Transaction) (uuid.UUID, error)
	SaveTrnQuantities(ctx context.Context, quantities TrnQuantities) error
}

// TxFunc is the unit of work run by Store.WithinTransaction.
// The Repository it receives is bound to the transaction and must not be used after fn returns.
type TxFunc func(ctx context.Context, repo Repository) error

// Store is a Repository that can run a unit of work atomically.
//
// WithinTransaction commits when fn returns nil and rolls back otherwise, so a failed unit of work
// leaves no partial effects. Engines report serialization failures as ErrConcurrencyConflict.
type Store interface {
	Repository
	WithinTransaction(ctx context.Context, fn TxFunc) error
}
