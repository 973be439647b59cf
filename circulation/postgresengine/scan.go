package postgresengine

import (
	"errors"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

func scanBook(rows adapters.DBRows) (circulation.Book, error) {
	book := circulation.Book{}

	err := rows.Scan(&book.ID, &book.Title, &book.TotalQuantity, &book.AvailableQuantity, &book.Version)

	return book, err
}

func scanLoaner(rows adapters.DBRows) (circulation.Loaner, error) {
	loaner := circulation.Loaner{}
	var kind string

	if err := rows.Scan(&loaner.ID, &loaner.Name, &kind, &loaner.Version); err != nil {
		return circulation.Loaner{}, err
	}

	loaner.Kind = circulation.LoanerKind(kind)

	return loaner, nil
}

func scanLibrarian(rows adapters.DBRows) (circulation.Librarian, error) {
	librarian := circulation.Librarian{}

	err := rows.Scan(&librarian.ID, &librarian.Name)

	return librarian, err
}

// scanLoan normalizes dates to UTC midnight, drivers differ in the location they attach to DATE columns.
func scanLoan(rows adapters.DBRows) (circulation.Loan, error) {
	loan := circulation.Loan{}

	err := rows.Scan(&loan.ID, &loan.LoanerID, &loan.BookID, &loan.Copies, &loan.BorrowDate, &loan.DueDate, &loan.OpenedAt)
	if err != nil {
		return circulation.Loan{}, err
	}

	loan.BorrowDate = circulation.TruncateToDay(loan.BorrowDate)
	loan.DueDate = circulation.TruncateToDay(loan.DueDate)
	loan.OpenedAt = loan.OpenedAt.UTC()

	return loan, nil
}

func scanTransaction(rows adapters.DBRows) (circulation.Transaction, error) {
	transaction := circulation.Transaction{}
	var transactionType string
	var details []byte

	err := rows.Scan(
		&transaction.ID,
		&transactionType,
		&transaction.OccurredAt,
		&transaction.LibrarianID,
		&transaction.LoanerID,
		&details,
	)
	if err != nil {
		return circulation.Transaction{}, err
	}

	transaction.Type = circulation.TransactionType(transactionType)
	transaction.OccurredAt = transaction.OccurredAt.UTC()

	if len(details) > 0 {
		if unmarshalErr := json.Unmarshal(details, &transaction.Details); unmarshalErr != nil {
			return circulation.Transaction{}, errors.Join(circulation.ErrUnmarshalingDetailsFailed, unmarshalErr)
		}
	}

	return transaction, nil
}

func scanTrnQuantities(rows adapters.DBRows) (circulation.TrnQuantities, error) {
	var transactionID, bookID uuid.UUID
	var copies int

	if err := rows.Scan(&transactionID, &bookID, &copies); err != nil {
		return circulation.TrnQuantities{}, err
	}

	return circulation.TrnQuantities{TransactionID: transactionID, BookID: bookID, Copies: copies}, nil
}
