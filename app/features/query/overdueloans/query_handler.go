package overdueloans

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Reader is the part of the Store the QueryHandler reads from.
type Reader interface {
	FindOverdueLoans(ctx context.Context, asOf time.Time) (circulation.Loans, error)
}

// QueryHandler loads overdue loans and delegates shaping the result to Project.
type QueryHandler struct {
	reader Reader
}

// NewQueryHandler creates a new QueryHandler with the provided Reader dependency.
func NewQueryHandler(reader Reader) QueryHandler {
	return QueryHandler{
		reader: reader,
	}
}

// Handle executes the query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (OverdueLoans, error) {
	ctx = circulation.WithEventualConsistency(ctx)

	loans, err := h.reader.FindOverdueLoans(ctx, query.AsOf)
	if err != nil {
		return OverdueLoans{}, err
	}

	return Project(loans, query), nil
}
