package memengine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// Reads on the Store see committed data, writes run as their own unit of work.

func (s *Store) FindBookByID(ctx context.Context, bookID uuid.UUID) (book circulation.Book, err error) {
	err = s.read(func(repo *repository) error {
		book, err = repo.FindBookByID(ctx, bookID)
		return err
	})

	return book, err
}

func (s *Store) SaveBook(ctx context.Context, book circulation.Book) (saved circulation.Book, err error) {
	err = s.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
		saved, err = repo.SaveBook(ctx, book)
		return err
	})

	return saved, err
}

func (s *Store) FindLoanerByID(ctx context.Context, loanerID uuid.UUID) (loaner circulation.Loaner, err error) {
	err = s.read(func(repo *repository) error {
		loaner, err = repo.FindLoanerByID(ctx, loanerID)
		return err
	})

	return loaner, err
}

func (s *Store) SaveLoaner(ctx context.Context, loaner circulation.Loaner) (saved circulation.Loaner, err error) {
	err = s.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
		saved, err = repo.SaveLoaner(ctx, loaner)
		return err
	})

	return saved, err
}

func (s *Store) DeleteLoaner(ctx context.Context, loanerID uuid.UUID) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
		return repo.DeleteLoaner(ctx, loanerID)
	})
}

func (s *Store) FindLibrarianByID(
	ctx context.Context,
	librarianID uuid.UUID,
) (librarian circulation.Librarian, err error) {

	err = s.read(func(repo *repository) error {
		librarian, err = repo.FindLibrarianByID(ctx, librarianID)
		return err
	})

	return librarian, err
}

func (s *Store) SaveLibrarian(ctx context.Context, librarian circulation.Librarian) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
		return repo.SaveLibrarian(ctx, librarian)
	})
}

func (s *Store) DeleteLibrarian(ctx context.Context, librarianID uuid.UUID) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
		return repo.DeleteLibrarian(ctx, librarianID)
	})
}

func (s *Store) FindOpenLoans(ctx context.Context, loanerID uuid.UUID) (loans circulation.Loans, err error) {
	err = s.read(func(repo *repository) error {
		loans, err = repo.FindOpenLoans(ctx, loanerID)
		return err
	})

	return loans, err
}

func (s *Store) FindOverdueLoans(ctx context.Context, asOf time.Time) (loans circulation.Loans, err error) {
	err = s.read(func(repo *repository) error {
		loans, err = repo.FindOverdueLoans(ctx, asOf)
		return err
	})

	return loans, err
}

func (s *Store) SaveLoan(ctx context.Context, loan circulation.Loan) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
		return repo.SaveLoan(ctx, loan)
	})
}

func (s *Store) DeleteLoan(ctx context.Context, loanID uuid.UUID) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
		return repo.DeleteLoan(ctx, loanID)
	})
}

func (s *Store) FindTransactionByID(
	ctx context.Context,
	transactionID uuid.UUID,
) (transaction circulation.Transaction, err error) {

	err = s.read(func(repo *repository) error {
		transaction, err = repo.FindTransactionByID(ctx, transactionID)
		return err
	})

	return transaction, err
}

func (s *Store) FindTransactionsByLoaner(
	ctx context.Context,
	loanerID uuid.UUID,
) (transactions circulation.Transactions, err error) {

	err = s.read(func(repo *repository) error {
		transactions, err = repo.FindTransactionsByLoaner(ctx, loanerID)
		return err
	})

	return transactions, err
}

func (s *Store) SaveTransaction(
	ctx context.Context,
	transaction circulation.Transaction,
) (transactionID uuid.UUID, err error) {

	err = s.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
		transactionID, err = repo.SaveTransaction(ctx, transaction)
		return err
	})

	return transactionID, err
}

func (s *Store) SaveTrnQuantities(ctx context.Context, quantities circulation.TrnQuantities) error {
	return s.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
		return repo.SaveTrnQuantities(ctx, quantities)
	})
}
