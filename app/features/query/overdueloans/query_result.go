package overdueloans

import (
	"time"

	"github.com/google/uuid"
)

// OverdueLoan represents one loan past its due date.
type OverdueLoan struct {
	LoanID      uuid.UUID
	LoanerID    uuid.UUID
	BookID      uuid.UUID
	Copies      int
	DueDate     time.Time
	DaysOverdue int
}

// OverdueLoans represents the query result, the longest overdue loans come first.
type OverdueLoans struct {
	AsOf          time.Time
	Loans         []OverdueLoan
	OverdueCopies int
	Count         int
}
