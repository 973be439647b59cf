package openloans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Reader is the part of the Store the QueryHandler reads from.
type Reader interface {
	FindLoanerByID(ctx context.Context, loanerID uuid.UUID) (circulation.Loaner, error)
	FindOpenLoans(ctx context.Context, loanerID uuid.UUID) (circulation.Loans, error)
	FindBookByID(ctx context.Context, bookID uuid.UUID) (circulation.Book, error)
}

// QueryHandler loads the open loans of a loaner and delegates shaping the result to Project.
type QueryHandler struct {
	reader Reader
	clock  func() time.Time
}

// NewQueryHandler creates a new QueryHandler. clock decides which loans count as overdue, nil means time.Now.
func NewQueryHandler(reader Reader, clock func() time.Time) QueryHandler {
	if clock == nil {
		clock = time.Now
	}

	return QueryHandler{
		reader: reader,
		clock:  clock,
	}
}

// Handle executes the query. An unknown loaner fails with circulation.ErrLoanerNotFound.
func (h QueryHandler) Handle(ctx context.Context, query Query) (OpenLoans, error) {
	// A loaner waiting at the desk can tolerate a replica that lags slightly behind.
	ctx = circulation.WithEventualConsistency(ctx)

	loaner, err := h.reader.FindLoanerByID(ctx, query.LoanerID)
	if errors.Is(err, circulation.ErrRecordNotFound) {
		return OpenLoans{}, fmt.Errorf("%w: %s", circulation.ErrLoanerNotFound, query.LoanerID)
	}

	if err != nil {
		return OpenLoans{}, err
	}

	loans, err := h.reader.FindOpenLoans(ctx, query.LoanerID)
	if err != nil {
		return OpenLoans{}, err
	}

	titles := make(map[uuid.UUID]string)

	for _, loan := range loans {
		if _, known := titles[loan.BookID]; known {
			continue
		}

		book, findErr := h.reader.FindBookByID(ctx, loan.BookID)
		if findErr != nil {
			return OpenLoans{}, findErr
		}

		titles[book.ID] = book.Title
	}

	return Project(loaner, loans, titles, h.clock()), nil
}
