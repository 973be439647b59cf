package overdueloans

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

const day = 24 * time.Hour

// Project builds the result from loans the Store returned for the query day, ordered by due date.
// Loans that are not overdue on that day are skipped.
func Project(loans circulation.Loans, query Query) OverdueLoans {
	asOf := circulation.TruncateToDay(query.AsOf)
	result := OverdueLoans{
		AsOf:  asOf,
		Loans: make([]OverdueLoan, 0, len(loans)),
	}

	for _, loan := range loans {
		if !loan.IsOverdueOn(asOf) {
			continue
		}

		result.Loans = append(result.Loans, OverdueLoan{
			LoanID:      loan.ID,
			LoanerID:    loan.LoanerID,
			BookID:      loan.BookID,
			Copies:      loan.Copies,
			DueDate:     loan.DueDate,
			DaysOverdue: int(asOf.Sub(loan.DueDate) / day),
		})

		result.OverdueCopies += loan.Copies
	}

	result.Count = len(result.Loans)

	return result
}
