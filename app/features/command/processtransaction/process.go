package processtransaction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Process applies a validated request through repo and returns the persisted Transaction.
//
// The Transaction header is saved first so its ID can be linked to every quantities row.
// Each line then moves inventory, updates the loans and records its quantities.
// Saving the loaner last bumps its version, which makes concurrent requests for the same loaner conflict.
// repo is expected to be bound to a Store transaction, Process itself does not roll anything back.
func Process(
	ctx context.Context,
	repo circulation.Repository,
	validated Validated,
	now time.Time,
) (circulation.Transaction, error) {

	transaction := circulation.Transaction{
		Type:        validated.Type,
		OccurredAt:  now.UTC(),
		LibrarianID: uuid.NullUUID{UUID: validated.Librarian.ID, Valid: true},
		LoanerID:    uuid.NullUUID{UUID: validated.Loaner.ID, Valid: true},
		Details:     detailsOf(validated),
	}

	transactionID, err := repo.SaveTransaction(ctx, transaction)
	if err != nil {
		return circulation.Transaction{}, err
	}

	transaction.ID = transactionID
	transaction.Lines = make([]circulation.BookCopies, 0, len(validated.Lines))
	tracker := circulation.NewLoanTracker(validated.Loaner.ID, validated.OpenLoans)

	for _, line := range validated.Lines {
		if err = applyLine(ctx, repo, tracker, validated, line, transaction.OccurredAt); err != nil {
			return circulation.Transaction{}, err
		}

		err = repo.SaveTrnQuantities(ctx, circulation.TrnQuantities{
			TransactionID: transactionID,
			BookID:        line.Book.ID,
			Copies:        line.Copies,
		})
		if err != nil {
			return circulation.Transaction{}, err
		}

		transaction.Lines = append(transaction.Lines, circulation.BookCopies{BookID: line.Book.ID, Copies: line.Copies})
	}

	if _, err = repo.SaveLoaner(ctx, validated.Loaner); err != nil {
		return circulation.Transaction{}, err
	}

	return transaction, nil
}

func applyLine(
	ctx context.Context,
	repo circulation.Repository,
	tracker *circulation.LoanTracker,
	validated Validated,
	line Line,
	openedAt time.Time,
) error {

	switch validated.Type {
	case circulation.Borrow:
		book, err := line.Book.Decrement(line.Copies)
		if err != nil {
			return err
		}

		loan, err := tracker.OpenLoan(book.ID, line.Copies, validated.BorrowDate, validated.DueDate, openedAt)
		if err != nil {
			return err
		}

		if err = repo.SaveLoan(ctx, loan); err != nil {
			return err
		}

		_, err = repo.SaveBook(ctx, book)

		return err

	case circulation.Return:
		book, err := line.Book.Increment(line.Copies)
		if err != nil {
			return err
		}

		changes, err := tracker.CloseLoan(book.ID, line.Copies)
		if err != nil {
			return err
		}

		for _, loan := range changes.Saved {
			if err = repo.SaveLoan(ctx, loan); err != nil {
				return err
			}
		}

		for _, loan := range changes.Deleted {
			if err = repo.DeleteLoan(ctx, loan.ID); err != nil {
				return err
			}
		}

		_, err = repo.SaveBook(ctx, book)

		return err

	case circulation.Extend:
		loans, err := tracker.ExtendDueDate(line.Book.ID, line.Copies, validated.DueDate)
		if err != nil {
			return err
		}

		for _, loan := range loans {
			if err = repo.SaveLoan(ctx, loan); err != nil {
				return err
			}
		}

		return nil

	default:
		return circulation.ErrInvalidTransactionType
	}
}

func detailsOf(validated Validated) circulation.TransactionDetails {
	details := circulation.TransactionDetails{}

	if !validated.BorrowDate.IsZero() {
		borrowDate := validated.BorrowDate
		details.BorrowDate = &borrowDate
	}

	if !validated.DueDate.IsZero() {
		dueDate := validated.DueDate
		details.DueDate = &dueDate
	}

	return details
}
