package openloans

import (
	"time"

	"github.com/google/uuid"
)

// LoanInfo represents one open loan.
type LoanInfo struct {
	LoanID     uuid.UUID
	BookID     uuid.UUID
	Title      string
	Copies     int
	BorrowDate time.Time
	DueDate    time.Time
	Overdue    bool
}

// OpenLoans represents the query result, loans are ordered oldest first.
type OpenLoans struct {
	LoanerID          uuid.UUID
	LoanerName        string
	Loans             []LoanInfo
	OutstandingCopies int
	Count             int
}
