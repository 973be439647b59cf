package transactionhistory

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Entry represents one ledger entry. LoanerID and LibrarianID are empty once the person was removed.
type Entry struct {
	TransactionID string
	Type          circulation.TransactionType
	OccurredAt    time.Time
	LoanerID      string
	LibrarianID   string
	Books         []circulation.BookCopies
	BorrowDate    string
	DueDate       string
}

// TransactionHistory represents the query result, entries are ordered by the time they occurred.
type TransactionHistory struct {
	Entries []Entry
	Count   int
}
