package processtransaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Lookup is the read-only part of the Repository the validation needs.
type Lookup interface {
	FindLibrarianByID(ctx context.Context, librarianID uuid.UUID) (circulation.Librarian, error)
	FindLoanerByID(ctx context.Context, loanerID uuid.UUID) (circulation.Loaner, error)
	FindBookByID(ctx context.Context, bookID uuid.UUID) (circulation.Book, error)
	FindOpenLoans(ctx context.Context, loanerID uuid.UUID) (circulation.Loans, error)
}

// Line is one aggregated book entry of a validated request.
type Line struct {
	Book   circulation.Book
	Copies int
}

// Validated is a fully resolved request that passed every business rule.
// BorrowDate is set for BORROW, DueDate for BORROW and EXTEND.
type Validated struct {
	Type       circulation.TransactionType
	Librarian  circulation.Librarian
	Loaner     circulation.Loaner
	Lines      []Line
	OpenLoans  circulation.Loans
	BorrowDate time.Time
	DueDate    time.Time
}

// Validate checks the command against the current state and resolves everything it references.
// It stops at the first broken rule, in this order: type, dates, librarian, loaner, book list,
// then per aggregated book its copies, its existence and the type-specific quantity rule.
// Lookup failures other than "not found" are returned unchanged.
func Validate(ctx context.Context, lookup Lookup, command Command) (Validated, error) {
	if !command.Type.IsValid() {
		return Validated{}, fmt.Errorf("%w: %q", circulation.ErrInvalidTransactionType, command.Type)
	}

	validated := Validated{Type: command.Type}

	if err := validateDates(command, &validated); err != nil {
		return Validated{}, err
	}

	librarian, err := resolveLibrarian(ctx, lookup, command.LibrarianID)
	if err != nil {
		return Validated{}, err
	}

	loaner, err := resolveLoaner(ctx, lookup, command.LoanerID)
	if err != nil {
		return Validated{}, err
	}

	if len(command.Books) == 0 {
		return Validated{}, circulation.ErrNoBooksSpecified
	}

	openLoans, err := lookup.FindOpenLoans(ctx, loaner.ID)
	if err != nil {
		return Validated{}, err
	}

	tracker := circulation.NewLoanTracker(loaner.ID, openLoans)

	for _, entry := range Aggregate(command.Books) {
		line, lineErr := validateLine(ctx, lookup, command.Type, tracker, entry)
		if lineErr != nil {
			return Validated{}, lineErr
		}

		validated.Lines = append(validated.Lines, line)
	}

	validated.Librarian = librarian
	validated.Loaner = loaner
	validated.OpenLoans = openLoans

	return validated, nil
}

// Aggregate merges entries for the same book by summing their copies.
// Books keep the order of their first appearance.
func Aggregate(books []circulation.BookCopies) []circulation.BookCopies {
	aggregated := make([]circulation.BookCopies, 0, len(books))
	index := make(map[uuid.UUID]int, len(books))

	for _, entry := range books {
		if i, seen := index[entry.BookID]; seen {
			aggregated[i].Copies += entry.Copies
			continue
		}

		index[entry.BookID] = len(aggregated)
		aggregated = append(aggregated, entry)
	}

	return aggregated
}

func validateDates(command Command, validated *Validated) error {
	switch command.Type {
	case circulation.Borrow:
		if command.BorrowDate == "" {
			return fmt.Errorf("%w: borrow date is required", circulation.ErrInvalidDate)
		}

		borrowDate, err := circulation.ParseDate(command.BorrowDate)
		if err != nil {
			return err
		}

		dueDate := borrowDate.Add(circulation.DefaultLoanPeriod)

		if command.DueDate != "" {
			if dueDate, err = circulation.ParseDate(command.DueDate); err != nil {
				return err
			}

			if dueDate.Before(borrowDate) {
				return fmt.Errorf(
					"%w: due date %s precedes borrow date %s",
					circulation.ErrInvalidDate, command.DueDate, command.BorrowDate,
				)
			}
		}

		validated.BorrowDate = borrowDate
		validated.DueDate = dueDate

	case circulation.Extend:
		if command.DueDate == "" {
			return fmt.Errorf("%w: due date is required", circulation.ErrInvalidDate)
		}

		dueDate, err := circulation.ParseDate(command.DueDate)
		if err != nil {
			return err
		}

		validated.DueDate = dueDate
	}

	return nil
}

func resolveLibrarian(ctx context.Context, lookup Lookup, librarianID uuid.UUID) (circulation.Librarian, error) {
	if librarianID == uuid.Nil {
		return circulation.Librarian{}, circulation.ErrLibrarianRequired
	}

	librarian, err := lookup.FindLibrarianByID(ctx, librarianID)
	if errors.Is(err, circulation.ErrRecordNotFound) {
		return circulation.Librarian{}, fmt.Errorf("%w: %s", circulation.ErrLibrarianNotFound, librarianID)
	}

	return librarian, err
}

func resolveLoaner(ctx context.Context, lookup Lookup, loanerID uuid.UUID) (circulation.Loaner, error) {
	if loanerID == uuid.Nil {
		return circulation.Loaner{}, circulation.ErrLoanerRequired
	}

	loaner, err := lookup.FindLoanerByID(ctx, loanerID)
	if errors.Is(err, circulation.ErrRecordNotFound) {
		return circulation.Loaner{}, fmt.Errorf("%w: %s", circulation.ErrLoanerNotFound, loanerID)
	}

	return loaner, err
}

func validateLine(
	ctx context.Context,
	lookup Lookup,
	transactionType circulation.TransactionType,
	tracker *circulation.LoanTracker,
	entry circulation.BookCopies,
) (Line, error) {

	if entry.Copies < 1 {
		return Line{}, fmt.Errorf("%w: %d copies of book %s", circulation.ErrInvalidQuantity, entry.Copies, entry.BookID)
	}

	book, err := lookup.FindBookByID(ctx, entry.BookID)
	if errors.Is(err, circulation.ErrRecordNotFound) {
		return Line{}, fmt.Errorf("%w: %s", circulation.ErrBookNotFound, entry.BookID)
	}

	if err != nil {
		return Line{}, err
	}

	outstanding := tracker.OutstandingCopies(book.ID)

	switch transactionType {
	case circulation.Borrow:
		if entry.Copies > book.AvailableQuantity {
			return Line{}, fmt.Errorf(
				"%w: requested %d copies of %q, only %d available",
				circulation.ErrInsufficientCopies, entry.Copies, book.Title, book.AvailableQuantity,
			)
		}

	case circulation.Return:
		if entry.Copies > outstanding {
			return Line{}, fmt.Errorf(
				"%w: returning %d copies of %q, %d outstanding",
				circulation.ErrOverReturn, entry.Copies, book.Title, outstanding,
			)
		}

	case circulation.Extend:
		if entry.Copies != outstanding {
			return Line{}, fmt.Errorf(
				"%w: extending %d copies of %q, %d outstanding",
				circulation.ErrPartialExtensionNotAllowed, entry.Copies, book.Title, outstanding,
			)
		}
	}

	return Line{Book: book, Copies: entry.Copies}, nil
}
