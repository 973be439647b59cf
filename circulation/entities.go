package circulation

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the kind of circulation event a Transaction records.
type TransactionType string

const (
	Borrow TransactionType = "BORROW"
	Return TransactionType = "RETURN"
	Extend TransactionType = "EXTEND"
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Borrow, Return, Extend:
		return true
	default:
		return false
	}
}

// LoanerKind distinguishes students from faculty members.
type LoanerKind string

const (
	Student LoanerKind = "STUDENT"
	Faculty LoanerKind = "FACULTY"
)

// Book is a title the library owns TotalQuantity copies of.
// AvailableQuantity counts the copies that are not on loan.
//
// Version is the optimistic-lock counter maintained by the Store: 0 means "never persisted".
type Book struct {
	ID                uuid.UUID
	Title             string
	TotalQuantity     int
	AvailableQuantity int
	Version           int
}

// OnLoan returns the number of copies currently lent out.
func (b Book) OnLoan() int {
	return b.TotalQuantity - b.AvailableQuantity
}

// Loaner is a person who may borrow books.
// Open loans and transaction history are not cached here, they are queried from the Store.
type Loaner struct {
	ID      uuid.UUID
	Name    string
	Kind    LoanerKind
	Version int
}

// Librarian facilitates transactions.
type Librarian struct {
	ID   uuid.UUID
	Name string
}

// Loan is an open record of copies of one book held by one loaner.
// It references both by ID and owns neither.
type Loan struct {
	ID         uuid.UUID
	LoanerID   uuid.UUID
	BookID     uuid.UUID
	Copies     int
	BorrowDate time.Time
	DueDate    time.Time
	OpenedAt   time.Time
}

// IsOverdueOn reports whether the loan's due date lies before the given day.
func (l Loan) IsOverdueOn(day time.Time) bool {
	return l.DueDate.Before(TruncateToDay(day))
}

// Loans is an alias type for a slice of Loan.
type Loans = []Loan

// BookCopies is one (book, copies) pair of a transaction request or record.
type BookCopies struct {
	BookID uuid.UUID
	Copies int
}

// TransactionDetails holds the dates a transaction was made with, kept for audit.
type TransactionDetails struct {
	BorrowDate *time.Time `json:"borrowDate,omitempty"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
}

// Transaction is an immutable ledger entry.
//
// LibrarianID and LoanerID become invalid (NULL) once the referenced librarian or loaner is deleted,
// the Transaction itself is never mutated or deleted by the circulation rules.
type Transaction struct {
	ID          uuid.UUID
	Type        TransactionType
	OccurredAt  time.Time
	LibrarianID uuid.NullUUID
	LoanerID    uuid.NullUUID
	Lines       []BookCopies
	Details     TransactionDetails
}

// Transactions is an alias type for a slice of Transaction.
type Transactions = []Transaction

// TrnQuantities links a Transaction to one book and the copies that changed.
type TrnQuantities struct {
	TransactionID uuid.UUID
	BookID        uuid.UUID
	Copies        int
}
