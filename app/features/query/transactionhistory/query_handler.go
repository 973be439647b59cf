package transactionhistory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// ErrAmbiguousQuery is returned when a Query names both or neither a loaner and a transaction.
var ErrAmbiguousQuery = errors.New("query needs either a loaner or a transaction id")

// Reader is the part of the Store the QueryHandler reads from.
type Reader interface {
	FindTransactionByID(ctx context.Context, transactionID uuid.UUID) (circulation.Transaction, error)
	FindTransactionsByLoaner(ctx context.Context, loanerID uuid.UUID) (circulation.Transactions, error)
}

// QueryHandler reads ledger entries and delegates shaping the result to Project.
type QueryHandler struct {
	reader Reader
}

// NewQueryHandler creates a new QueryHandler with the provided Reader dependency.
func NewQueryHandler(reader Reader) QueryHandler {
	return QueryHandler{
		reader: reader,
	}
}

// Handle executes the query. An unknown transaction fails with circulation.ErrRecordNotFound,
// a loaner without transactions yields an empty history.
func (h QueryHandler) Handle(ctx context.Context, query Query) (TransactionHistory, error) {
	ctx = circulation.WithEventualConsistency(ctx)

	byLoaner, byTransaction := query.LoanerID != uuid.Nil, query.TransactionID != uuid.Nil
	if byLoaner == byTransaction {
		return TransactionHistory{}, ErrAmbiguousQuery
	}

	if byTransaction {
		transaction, err := h.reader.FindTransactionByID(ctx, query.TransactionID)
		if err != nil {
			return TransactionHistory{}, err
		}

		return Project(circulation.Transactions{transaction}), nil
	}

	transactions, err := h.reader.FindTransactionsByLoaner(ctx, query.LoanerID)
	if err != nil {
		return TransactionHistory{}, err
	}

	return Project(transactions), nil
}
