package circulation

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// LoanChanges describes which loan rows a tracker operation touched.
// Saved loans must be upserted, Deleted loans must be removed from the Store.
type LoanChanges struct {
	Saved   Loans
	Deleted Loans
}

// LoanTracker keeps the open loans of one loaner and applies BORROW, RETURN and EXTEND to them.
//
// It holds no references to books or the loaner, only IDs, and performs no I/O:
// callers load the open loans from the Store and persist the returned changes.
type LoanTracker struct {
	loanerID uuid.UUID
	open     Loans
	newID    func() (uuid.UUID, error)
}

// NewLoanTracker creates a tracker over the given open loans of a loaner.
// Loans belonging to other loaners are ignored.
func NewLoanTracker(loanerID uuid.UUID, openLoans Loans) *LoanTracker {
	open := make(Loans, 0, len(openLoans))
	for _, loan := range openLoans {
		if loan.LoanerID == loanerID {
			open = append(open, loan)
		}
	}

	return &LoanTracker{
		loanerID: loanerID,
		open:     open,
		newID:    uuid.NewV7,
	}
}

// OpenLoans returns a copy of the loans the tracker currently considers open.
func (t *LoanTracker) OpenLoans() Loans {
	loans := make(Loans, len(t.open))
	copy(loans, t.open)

	return loans
}

// OutstandingCopies returns the number of copies of the book the loaner has not returned yet.
func (t *LoanTracker) OutstandingCopies(bookID uuid.UUID) int {
	outstanding := 0
	for _, loan := range t.open {
		if loan.BookID == bookID {
			outstanding += loan.Copies
		}
	}

	return outstanding
}

// OpenLoan creates a new loan for the given copies. Existing loans for the same book are left alone.
func (t *LoanTracker) OpenLoan(
	bookID uuid.UUID,
	copies int,
	borrowDate time.Time,
	dueDate time.Time,
	openedAt time.Time,
) (Loan, error) {

	if copies < 1 {
		return Loan{}, fmt.Errorf("%w: cannot lend %d copies of book %s", ErrInvalidQuantity, copies, bookID)
	}

	loanID, err := t.newID()
	if err != nil {
		return Loan{}, err
	}

	loan := Loan{
		ID:         loanID,
		LoanerID:   t.loanerID,
		BookID:     bookID,
		Copies:     copies,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		OpenedAt:   openedAt,
	}

	t.open = append(t.open, loan)

	return loan, nil
}

// CloseLoan takes the returned copies off the loaner's loans for the book, oldest loan first.
// A loan that reaches zero copies is deleted, a partially returned loan is shrunk.
func (t *LoanTracker) CloseLoan(bookID uuid.UUID, copies int) (LoanChanges, error) {
	if copies < 1 {
		return LoanChanges{}, fmt.Errorf("%w: cannot return %d copies of book %s", ErrInvalidQuantity, copies, bookID)
	}

	outstanding := t.OutstandingCopies(bookID)
	if copies > outstanding {
		return LoanChanges{}, fmt.Errorf(
			"%w: returning %d copies of book %s, loaner %s has %d outstanding",
			ErrOverReturn, copies, bookID, t.loanerID, outstanding,
		)
	}

	changes := LoanChanges{}
	remaining := copies
	deleted := make(map[uuid.UUID]bool)

	for _, loan := range t.loansForBookOldestFirst(bookID) {
		if remaining == 0 {
			break
		}

		if loan.Copies <= remaining {
			remaining -= loan.Copies
			deleted[loan.ID] = true
			changes.Deleted = append(changes.Deleted, loan)

			continue
		}

		loan.Copies -= remaining
		remaining = 0
		t.replace(loan)
		changes.Saved = append(changes.Saved, loan)
	}

	t.removeAll(deleted)

	return changes, nil
}

// ExtendDueDate moves the due date of all the loaner's loans for the book.
// The copies must match the outstanding copies exactly, extending only some of them is not allowed.
func (t *LoanTracker) ExtendDueDate(bookID uuid.UUID, copies int, newDueDate time.Time) (Loans, error) {
	outstanding := t.OutstandingCopies(bookID)
	if outstanding == 0 || copies != outstanding {
		return nil, fmt.Errorf(
			"%w: extending %d copies of book %s, loaner %s has %d outstanding",
			ErrPartialExtensionNotAllowed, copies, bookID, t.loanerID, outstanding,
		)
	}

	extended := make(Loans, 0)
	for _, loan := range t.loansForBookOldestFirst(bookID) {
		loan.DueDate = newDueDate
		t.replace(loan)
		extended = append(extended, loan)
	}

	return extended, nil
}

// loansForBookOldestFirst returns the open loans for the book ordered by borrow date,
// then by the time the loan was opened, then by ID, so the choice of loan rows is deterministic.
func (t *LoanTracker) loansForBookOldestFirst(bookID uuid.UUID) Loans {
	loans := make(Loans, 0)
	for _, loan := range t.open {
		if loan.BookID == bookID {
			loans = append(loans, loan)
		}
	}

	sort.SliceStable(loans, func(i, j int) bool {
		if !loans[i].BorrowDate.Equal(loans[j].BorrowDate) {
			return loans[i].BorrowDate.Before(loans[j].BorrowDate)
		}

		if !loans[i].OpenedAt.Equal(loans[j].OpenedAt) {
			return loans[i].OpenedAt.Before(loans[j].OpenedAt)
		}

		return loans[i].ID.String() < loans[j].ID.String()
	})

	return loans
}

func (t *LoanTracker) replace(loan Loan) {
	for i := range t.open {
		if t.open[i].ID == loan.ID {
			t.open[i] = loan
			return
		}
	}
}

func (t *LoanTracker) removeAll(ids map[uuid.UUID]bool) {
	if len(ids) == 0 {
		return
	}

	kept := t.open[:0]
	for _, loan := range t.open {
		if !ids[loan.ID] {
			kept = append(kept, loan)
		}
	}

	t.open = kept
}
