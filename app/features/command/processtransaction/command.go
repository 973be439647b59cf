package processtransaction

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

const (
	commandType = "ProcessTransaction"
)

// Command represents the intent to borrow, return or extend books for a loaner.
//
// BorrowDate and DueDate are yyyyMMdd strings. BORROW needs a BorrowDate and takes an optional
// DueDate, EXTEND needs a DueDate, RETURN ignores both.
type Command struct {
	Type        circulation.TransactionType
	LoanerID    uuid.UUID
	LibrarianID uuid.UUID
	Books       []circulation.BookCopies
	BorrowDate  string
	DueDate     string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	transactionType circulation.TransactionType,
	loanerID uuid.UUID,
	librarianID uuid.UUID,
	books []circulation.BookCopies,
	borrowDate string,
	dueDate string,
) Command {

	return Command{
		Type:        transactionType,
		LoanerID:    loanerID,
		LibrarianID: librarianID,
		Books:       books,
		BorrowDate:  borrowDate,
		DueDate:     dueDate,
	}
}
