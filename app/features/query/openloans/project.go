package openloans

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Project builds the result from the loaner, their open loans and the titles of the books those loans reference.
// Loans are expected oldest first, as the Store returns them. asOf decides which loans are overdue.
func Project(loaner circulation.Loaner, loans circulation.Loans, titles map[uuid.UUID]string, asOf time.Time) OpenLoans {
	result := OpenLoans{
		LoanerID:   loaner.ID,
		LoanerName: loaner.Name,
		Loans:      make([]LoanInfo, 0, len(loans)),
	}

	for _, loan := range loans {
		result.Loans = append(result.Loans, LoanInfo{
			LoanID:     loan.ID,
			BookID:     loan.BookID,
			Title:      titles[loan.BookID],
			Copies:     loan.Copies,
			BorrowDate: loan.BorrowDate,
			DueDate:    loan.DueDate,
			Overdue:    loan.IsOverdueOn(asOf),
		})

		result.OutstandingCopies += loan.Copies
	}

	result.Count = len(result.Loans)

	return result
}
