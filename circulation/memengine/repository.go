package memengine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

var (
	errForeignKey = errors.New("referenced row does not exist")
	errCheck      = errors.New("row violates a check constraint")
	errDuplicate  = errors.New("duplicate key")
)

// repository implements circulation.Repository on one state. Locking is the caller's job.
type repository struct {
	st *state
}

func (r *repository) FindBookByID(_ context.Context, bookID uuid.UUID) (circulation.Book, error) {
	book, ok := r.st.books[bookID]
	if !ok {
		return circulation.Book{}, fmt.Errorf("%w: book %s", circulation.ErrRecordNotFound, bookID)
	}

	return book, nil
}

func (r *repository) SaveBook(_ context.Context, book circulation.Book) (circulation.Book, error) {
	if book.TotalQuantity < 0 || book.AvailableQuantity < 0 || book.AvailableQuantity > book.TotalQuantity {
		return circulation.Book{}, errors.Join(circulation.ErrSavingFailed, errCheck)
	}

	stored, exists := r.st.books[book.ID]
	if err := checkVersion(exists, stored.Version, book.Version); err != nil {
		return circulation.Book{}, err
	}

	book.Version++
	r.st.books[book.ID] = book

	return book, nil
}

func (r *repository) FindLoanerByID(_ context.Context, loanerID uuid.UUID) (circulation.Loaner, error) {
	loaner, ok := r.st.loaners[loanerID]
	if !ok {
		return circulation.Loaner{}, fmt.Errorf("%w: loaner %s", circulation.ErrRecordNotFound, loanerID)
	}

	return loaner, nil
}

func (r *repository) SaveLoaner(_ context.Context, loaner circulation.Loaner) (circulation.Loaner, error) {
	if loaner.Kind != circulation.Student && loaner.Kind != circulation.Faculty {
		return circulation.Loaner{}, errors.Join(circulation.ErrSavingFailed, errCheck)
	}

	stored, exists := r.st.loaners[loaner.ID]
	if err := checkVersion(exists, stored.Version, loaner.Version); err != nil {
		return circulation.Loaner{}, err
	}

	loaner.Version++
	r.st.loaners[loaner.ID] = loaner

	return loaner, nil
}

// DeleteLoaner removes the loaner and nulls the loaner reference on their transactions.
// Loans still pointing at the loaner block the delete.
func (r *repository) DeleteLoaner(_ context.Context, loanerID uuid.UUID) error {
	if _, ok := r.st.loaners[loanerID]; !ok {
		return fmt.Errorf("%w: loaner %s", circulation.ErrRecordNotFound, loanerID)
	}

	for _, loan := range r.st.loans {
		if loan.LoanerID == loanerID {
			return errors.Join(circulation.ErrDeletingFailed, fmt.Errorf("%w: loan %s", errForeignKey, loan.ID))
		}
	}

	delete(r.st.loaners, loanerID)

	for id, transaction := range r.st.transactions {
		if transaction.LoanerID.Valid && transaction.LoanerID.UUID == loanerID {
			transaction.LoanerID = uuid.NullUUID{}
			r.st.transactions[id] = transaction
		}
	}

	return nil
}

func (r *repository) FindLibrarianByID(_ context.Context, librarianID uuid.UUID) (circulation.Librarian, error) {
	librarian, ok := r.st.librarians[librarianID]
	if !ok {
		return circulation.Librarian{}, fmt.Errorf("%w: librarian %s", circulation.ErrRecordNotFound, librarianID)
	}

	return librarian, nil
}

func (r *repository) SaveLibrarian(_ context.Context, librarian circulation.Librarian) error {
	r.st.librarians[librarian.ID] = librarian

	return nil
}

// DeleteLibrarian removes the librarian and nulls the librarian reference on their transactions.
func (r *repository) DeleteLibrarian(_ context.Context, librarianID uuid.UUID) error {
	if _, ok := r.st.librarians[librarianID]; !ok {
		return fmt.Errorf("%w: librarian %s", circulation.ErrRecordNotFound, librarianID)
	}

	delete(r.st.librarians, librarianID)

	for id, transaction := range r.st.transactions {
		if transaction.LibrarianID.Valid && transaction.LibrarianID.UUID == librarianID {
			transaction.LibrarianID = uuid.NullUUID{}
			r.st.transactions[id] = transaction
		}
	}

	return nil
}

// FindOpenLoans returns the loaner's loans, oldest first.
func (r *repository) FindOpenLoans(_ context.Context, loanerID uuid.UUID) (circulation.Loans, error) {
	loans := make(circulation.Loans, 0)

	for _, loan := range r.st.loans {
		if loan.LoanerID == loanerID {
			loans = append(loans, loan)
		}
	}

	slices.SortFunc(loans, compareLoansByAge)

	return loans, nil
}

// FindOverdueLoans returns all loans whose due date lies before the day of asOf.
func (r *repository) FindOverdueLoans(_ context.Context, asOf time.Time) (circulation.Loans, error) {
	loans := make(circulation.Loans, 0)

	for _, loan := range r.st.loans {
		if loan.IsOverdueOn(asOf) {
			loans = append(loans, loan)
		}
	}

	slices.SortFunc(loans, func(a, b circulation.Loan) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}

		return compareLoansByAge(a, b)
	})

	return loans, nil
}

// SaveLoan inserts a loan or updates its copies and due date.
func (r *repository) SaveLoan(_ context.Context, loan circulation.Loan) error {
	if loan.Copies < 1 {
		return errors.Join(circulation.ErrSavingFailed, errCheck)
	}

	if stored, exists := r.st.loans[loan.ID]; exists {
		stored.Copies = loan.Copies
		stored.DueDate = circulation.TruncateToDay(loan.DueDate)
		r.st.loans[loan.ID] = stored

		return nil
	}

	if _, ok := r.st.loaners[loan.LoanerID]; !ok {
		return errors.Join(circulation.ErrSavingFailed, fmt.Errorf("%w: loaner %s", errForeignKey, loan.LoanerID))
	}

	if _, ok := r.st.books[loan.BookID]; !ok {
		return errors.Join(circulation.ErrSavingFailed, fmt.Errorf("%w: book %s", errForeignKey, loan.BookID))
	}

	loan.BorrowDate = circulation.TruncateToDay(loan.BorrowDate)
	loan.DueDate = circulation.TruncateToDay(loan.DueDate)
	loan.OpenedAt = loan.OpenedAt.UTC()
	r.st.loans[loan.ID] = loan

	return nil
}

func (r *repository) DeleteLoan(_ context.Context, loanID uuid.UUID) error {
	if _, ok := r.st.loans[loanID]; !ok {
		return fmt.Errorf("%w: loan %s", circulation.ErrRecordNotFound, loanID)
	}

	delete(r.st.loans, loanID)

	return nil
}

func (r *repository) FindTransactionByID(_ context.Context, transactionID uuid.UUID) (circulation.Transaction, error) {
	transaction, ok := r.st.transactions[transactionID]
	if !ok {
		return circulation.Transaction{}, fmt.Errorf("%w: transaction %s", circulation.ErrRecordNotFound, transactionID)
	}

	return copyTransaction(transaction), nil
}

// FindTransactionsByLoaner returns the loaner's transactions in the order they occurred.
func (r *repository) FindTransactionsByLoaner(_ context.Context, loanerID uuid.UUID) (circulation.Transactions, error) {
	transactions := make(circulation.Transactions, 0)

	for _, id := range r.st.transactionOrder {
		transaction := r.st.transactions[id]
		if transaction.LoanerID.Valid && transaction.LoanerID.UUID == loanerID {
			transactions = append(transactions, copyTransaction(transaction))
		}
	}

	slices.SortStableFunc(transactions, func(a, b circulation.Transaction) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})

	return transactions, nil
}

// SaveTransaction appends a transaction header. A transaction without an ID gets a time-ordered one.
// Lines passed in the header are ignored, they are stored with SaveTrnQuantities.
func (r *repository) SaveTransaction(_ context.Context, transaction circulation.Transaction) (uuid.UUID, error) {
	if !transaction.Type.IsValid() {
		return uuid.Nil, errors.Join(circulation.ErrSavingFailed, errCheck)
	}

	if transaction.LoanerID.Valid {
		if _, ok := r.st.loaners[transaction.LoanerID.UUID]; !ok {
			return uuid.Nil, errors.Join(
				circulation.ErrSavingFailed,
				fmt.Errorf("%w: loaner %s", errForeignKey, transaction.LoanerID.UUID),
			)
		}
	}

	if transaction.LibrarianID.Valid {
		if _, ok := r.st.librarians[transaction.LibrarianID.UUID]; !ok {
			return uuid.Nil, errors.Join(
				circulation.ErrSavingFailed,
				fmt.Errorf("%w: librarian %s", errForeignKey, transaction.LibrarianID.UUID),
			)
		}
	}

	if transaction.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.Nil, errors.Join(circulation.ErrSavingFailed, err)
		}

		transaction.ID = id
	}

	if _, exists := r.st.transactions[transaction.ID]; exists {
		return uuid.Nil, errors.Join(circulation.ErrSavingFailed, fmt.Errorf("%w: transaction %s", errDuplicate, transaction.ID))
	}

	transaction.OccurredAt = transaction.OccurredAt.UTC()
	transaction.Lines = make([]circulation.BookCopies, 0)
	r.st.transactions[transaction.ID] = transaction
	r.st.transactionOrder = append(r.st.transactionOrder, transaction.ID)

	return transaction.ID, nil
}

// SaveTrnQuantities appends one line of a transaction. Each book appears at most once per transaction.
func (r *repository) SaveTrnQuantities(_ context.Context, quantities circulation.TrnQuantities) error {
	if quantities.Copies < 1 {
		return errors.Join(circulation.ErrSavingFailed, errCheck)
	}

	transaction, ok := r.st.transactions[quantities.TransactionID]
	if !ok {
		return errors.Join(
			circulation.ErrSavingFailed,
			fmt.Errorf("%w: transaction %s", errForeignKey, quantities.TransactionID),
		)
	}

	if _, ok = r.st.books[quantities.BookID]; !ok {
		return errors.Join(circulation.ErrSavingFailed, fmt.Errorf("%w: book %s", errForeignKey, quantities.BookID))
	}

	for _, line := range transaction.Lines {
		if line.BookID == quantities.BookID {
			return errors.Join(circulation.ErrSavingFailed, fmt.Errorf("%w: book %s", errDuplicate, quantities.BookID))
		}
	}

	transaction.Lines = append(transaction.Lines, circulation.BookCopies{
		BookID: quantities.BookID,
		Copies: quantities.Copies,
	})
	r.st.transactions[quantities.TransactionID] = transaction

	return nil
}

// checkVersion implements the optimistic lock: version 0 inserts, anything else must match the stored row.
func checkVersion(exists bool, storedVersion, expectedVersion int) error {
	switch {
	case expectedVersion == 0 && !exists:
		return nil
	case expectedVersion != 0 && exists && storedVersion == expectedVersion:
		return nil
	default:
		return circulation.ErrConcurrencyConflict
	}
}

func compareLoansByAge(a, b circulation.Loan) int {
	if c := a.BorrowDate.Compare(b.BorrowDate); c != 0 {
		return c
	}

	if c := a.OpenedAt.Compare(b.OpenedAt); c != 0 {
		return c
	}

	return strings.Compare(a.ID.String(), b.ID.String())
}
