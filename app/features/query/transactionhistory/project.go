package transactionhistory

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Project turns stored transactions into ledger entries. Dates are rendered as yyyyMMdd.
func Project(transactions circulation.Transactions) TransactionHistory {
	entries := make([]Entry, 0, len(transactions))

	for _, transaction := range transactions {
		entry := Entry{
			TransactionID: transaction.ID.String(),
			Type:          transaction.Type,
			OccurredAt:    transaction.OccurredAt,
			LoanerID:      nullableID(transaction.LoanerID),
			LibrarianID:   nullableID(transaction.LibrarianID),
			Books:         transaction.Lines,
		}

		if transaction.Details.BorrowDate != nil {
			entry.BorrowDate = circulation.FormatDate(*transaction.Details.BorrowDate)
		}

		if transaction.Details.DueDate != nil {
			entry.DueDate = circulation.FormatDate(*transaction.Details.DueDate)
		}

		entries = append(entries, entry)
	}

	return TransactionHistory{
		Entries: entries,
		Count:   len(entries),
	}
}

func nullableID(id uuid.NullUUID) string {
	if !id.Valid {
		return ""
	}

	return id.UUID.String()
}
