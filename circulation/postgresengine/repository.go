package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FindBookByID loads a book. Inside a transaction the row stays locked until commit.
func (r *repository) FindBookByID(ctx context.Context, bookID uuid.UUID) (book circulation.Book, err error) {
	ctx, observer := r.s.startOperation(ctx, opFindBook)
	defer func() { observer.finish(err) }()

	selectStmt := r.s.builder().
		From(r.s.table(tableBooks)).
		Select(colID, colTitle, colTotalQuantity, colAvailableQuantity, colVersion).
		Where(goqu.C(colID).Eq(bookID.String()))

	books, err := selectAll(ctx, r, opFindBook, r.lockForUpdate(selectStmt), scanBook)
	if err != nil {
		return circulation.Book{}, err
	}

	if len(books) == 0 {
		return circulation.Book{}, fmt.Errorf("%w: book %s", circulation.ErrRecordNotFound, bookID)
	}

	return books[0], nil
}

// SaveBook inserts a new book (Version 0) or updates an existing one if its version still matches.
func (r *repository) SaveBook(ctx context.Context, book circulation.Book) (saved circulation.Book, err error) {
	ctx, observer := r.s.startOperation(ctx, opSaveBook)
	defer func() { observer.finish(err) }()

	if book.Version == 0 {
		insertStmt := r.s.builder().
			Insert(r.s.table(tableBooks)).
			Rows(goqu.Record{
				colID:                book.ID.String(),
				colTitle:             book.Title,
				colTotalQuantity:     book.TotalQuantity,
				colAvailableQuantity: book.AvailableQuantity,
				colVersion:           1,
			})

		if err = r.insertVersioned(ctx, opSaveBook, insertStmt); err != nil {
			return circulation.Book{}, err
		}

		book.Version = 1

		return book, nil
	}

	updateStmt := r.s.builder().
		Update(r.s.table(tableBooks)).
		Set(goqu.Record{
			colTitle:             book.Title,
			colTotalQuantity:     book.TotalQuantity,
			colAvailableQuantity: book.AvailableQuantity,
			colVersion:           goqu.L(exprVersionPlus1),
		}).
		Where(goqu.C(colID).Eq(book.ID.String()), goqu.C(colVersion).Eq(book.Version))

	if err = r.updateVersioned(ctx, opSaveBook, updateStmt); err != nil {
		return circulation.Book{}, err
	}

	book.Version++

	return book, nil
}

// FindLoanerByID loads a loaner. Inside a transaction the row stays locked until commit.
func (r *repository) FindLoanerByID(ctx context.Context, loanerID uuid.UUID) (loaner circulation.Loaner, err error) {
	ctx, observer := r.s.startOperation(ctx, opFindLoaner)
	defer func() { observer.finish(err) }()

	selectStmt := r.s.builder().
		From(r.s.table(tableLoaners)).
		Select(colID, colName, colKind, colVersion).
		Where(goqu.C(colID).Eq(loanerID.String()))

	loaners, err := selectAll(ctx, r, opFindLoaner, r.lockForUpdate(selectStmt), scanLoaner)
	if err != nil {
		return circulation.Loaner{}, err
	}

	if len(loaners) == 0 {
		return circulation.Loaner{}, fmt.Errorf("%w: loaner %s", circulation.ErrRecordNotFound, loanerID)
	}

	return loaners[0], nil
}

// SaveLoaner inserts a new loaner (Version 0) or updates an existing one if its version still matches.
func (r *repository) SaveLoaner(ctx context.Context, loaner circulation.Loaner) (saved circulation.Loaner, err error) {
	ctx, observer := r.s.startOperation(ctx, opSaveLoaner)
	defer func() { observer.finish(err) }()

	if loaner.Version == 0 {
		insertStmt := r.s.builder().
			Insert(r.s.table(tableLoaners)).
			Rows(goqu.Record{
				colID:      loaner.ID.String(),
				colName:    loaner.Name,
				colKind:    string(loaner.Kind),
				colVersion: 1,
			})

		if err = r.insertVersioned(ctx, opSaveLoaner, insertStmt); err != nil {
			return circulation.Loaner{}, err
		}

		loaner.Version = 1

		return loaner, nil
	}

	updateStmt := r.s.builder().
		Update(r.s.table(tableLoaners)).
		Set(goqu.Record{
			colName:    loaner.Name,
			colKind:    string(loaner.Kind),
			colVersion: goqu.L(exprVersionPlus1),
		}).
		Where(goqu.C(colID).Eq(loaner.ID.String()), goqu.C(colVersion).Eq(loaner.Version))

	if err = r.updateVersioned(ctx, opSaveLoaner, updateStmt); err != nil {
		return circulation.Loaner{}, err
	}

	loaner.Version++

	return loaner, nil
}

// DeleteLoaner deletes a loaner. The database nulls loaner_id on the loaner's transactions.
func (r *repository) DeleteLoaner(ctx context.Context, loanerID uuid.UUID) (err error) {
	ctx, observer := r.s.startOperation(ctx, opDeleteLoaner)
	defer func() { observer.finish(err) }()

	deleteStmt := r.s.builder().
		Delete(r.s.table(tableLoaners)).
		Where(goqu.C(colID).Eq(loanerID.String()))

	return r.deleteOne(ctx, opDeleteLoaner, deleteStmt, "loaner", loanerID)
}

// FindLibrarianByID loads a librarian.
func (r *repository) FindLibrarianByID(
	ctx context.Context,
	librarianID uuid.UUID,
) (librarian circulation.Librarian, err error) {

	ctx, observer := r.s.startOperation(ctx, opFindLibrarian)
	defer func() { observer.finish(err) }()

	selectStmt := r.s.builder().
		From(r.s.table(tableLibrarians)).
		Select(colID, colName).
		Where(goqu.C(colID).Eq(librarianID.String()))

	librarians, err := selectAll(ctx, r, opFindLibrarian, selectStmt, scanLibrarian)
	if err != nil {
		return circulation.Librarian{}, err
	}

	if len(librarians) == 0 {
		return circulation.Librarian{}, fmt.Errorf("%w: librarian %s", circulation.ErrRecordNotFound, librarianID)
	}

	return librarians[0], nil
}

// SaveLibrarian inserts or updates a librarian.
func (r *repository) SaveLibrarian(ctx context.Context, librarian circulation.Librarian) (err error) {
	ctx, observer := r.s.startOperation(ctx, opSaveLibrarian)
	defer func() { observer.finish(err) }()

	insertStmt := r.s.builder().
		Insert(r.s.table(tableLibrarians)).
		Rows(goqu.Record{
			colID:   librarian.ID.String(),
			colName: librarian.Name,
		}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{colName: goqu.L(exprExcludedPfx + colName)}))

	sqlQuery, err := toSQL(insertStmt)
	if err != nil {
		return err
	}

	_, err = r.exec(ctx, opSaveLibrarian, sqlQuery, circulation.ErrSavingFailed)

	return err
}

// DeleteLibrarian deletes a librarian. The database nulls librarian_id on their transactions.
func (r *repository) DeleteLibrarian(ctx context.Context, librarianID uuid.UUID) (err error) {
	ctx, observer := r.s.startOperation(ctx, opDeleteLibrarian)
	defer func() { observer.finish(err) }()

	deleteStmt := r.s.builder().
		Delete(r.s.table(tableLibrarians)).
		Where(goqu.C(colID).Eq(librarianID.String()))

	return r.deleteOne(ctx, opDeleteLibrarian, deleteStmt, "librarian", librarianID)
}

// FindOpenLoans returns the loaner's loans, oldest first.
func (r *repository) FindOpenLoans(ctx context.Context, loanerID uuid.UUID) (loans circulation.Loans, err error) {
	ctx, observer := r.s.startOperation(ctx, opFindOpenLoans)
	defer func() { observer.finish(err) }()

	selectStmt := r.loansSelect().
		Where(goqu.C(colLoanerID).Eq(loanerID.String())).
		Order(goqu.C(colBorrowDate).Asc(), goqu.C(colOpenedAt).Asc(), goqu.C(colID).Asc())

	return selectAll(ctx, r, opFindOpenLoans, selectStmt, scanLoan)
}

// FindOverdueLoans returns all loans whose due date lies before the day of asOf.
func (r *repository) FindOverdueLoans(ctx context.Context, asOf time.Time) (loans circulation.Loans, err error) {
	ctx, observer := r.s.startOperation(ctx, opFindOverdueLoans)
	defer func() { observer.finish(err) }()

	selectStmt := r.loansSelect().
		Where(goqu.C(colDueDate).Lt(circulation.TruncateToDay(asOf))).
		Order(goqu.C(colDueDate).Asc(), goqu.C(colBorrowDate).Asc(), goqu.C(colOpenedAt).Asc(), goqu.C(colID).Asc())

	return selectAll(ctx, r, opFindOverdueLoans, selectStmt, scanLoan)
}

// SaveLoan inserts a loan or updates its copies and due date.
func (r *repository) SaveLoan(ctx context.Context, loan circulation.Loan) (err error) {
	ctx, observer := r.s.startOperation(ctx, opSaveLoan)
	defer func() { observer.finish(err) }()

	insertStmt := r.s.builder().
		Insert(r.s.table(tableLoans)).
		Rows(goqu.Record{
			colID:         loan.ID.String(),
			colLoanerID:   loan.LoanerID.String(),
			colBookID:     loan.BookID.String(),
			colCopies:     loan.Copies,
			colBorrowDate: circulation.TruncateToDay(loan.BorrowDate),
			colDueDate:    circulation.TruncateToDay(loan.DueDate),
			colOpenedAt:   loan.OpenedAt.UTC(),
		}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colCopies:  goqu.L(exprExcludedPfx + colCopies),
			colDueDate: goqu.L(exprExcludedPfx + colDueDate),
		}))

	sqlQuery, err := toSQL(insertStmt)
	if err != nil {
		return err
	}

	_, err = r.exec(ctx, opSaveLoan, sqlQuery, circulation.ErrSavingFailed)

	return err
}

// DeleteLoan deletes a loan.
func (r *repository) DeleteLoan(ctx context.Context, loanID uuid.UUID) (err error) {
	ctx, observer := r.s.startOperation(ctx, opDeleteLoan)
	defer func() { observer.finish(err) }()

	deleteStmt := r.s.builder().
		Delete(r.s.table(tableLoans)).
		Where(goqu.C(colID).Eq(loanID.String()))

	return r.deleteOne(ctx, opDeleteLoan, deleteStmt, "loan", loanID)
}

// FindTransactionByID loads a transaction together with its lines.
func (r *repository) FindTransactionByID(
	ctx context.Context,
	transactionID uuid.UUID,
) (transaction circulation.Transaction, err error) {

	ctx, observer := r.s.startOperation(ctx, opFindTransaction)
	defer func() { observer.finish(err) }()

	selectStmt := r.transactionsSelect().
		Where(goqu.C(colID).Eq(transactionID.String()))

	transactions, err := selectAll(ctx, r, opFindTransaction, selectStmt, scanTransaction)
	if err != nil {
		return circulation.Transaction{}, err
	}

	if len(transactions) == 0 {
		return circulation.Transaction{}, fmt.Errorf("%w: transaction %s", circulation.ErrRecordNotFound, transactionID)
	}

	if err = r.attachLines(ctx, opFindTransaction, transactions); err != nil {
		return circulation.Transaction{}, err
	}

	return transactions[0], nil
}

// FindTransactionsByLoaner returns the loaner's transactions in the order they occurred.
func (r *repository) FindTransactionsByLoaner(
	ctx context.Context,
	loanerID uuid.UUID,
) (transactions circulation.Transactions, err error) {

	ctx, observer := r.s.startOperation(ctx, opFindTransactions)
	defer func() { observer.finish(err) }()

	selectStmt := r.transactionsSelect().
		Where(goqu.C(colLoanerID).Eq(loanerID.String())).
		Order(goqu.C(colOccurredAt).Asc(), goqu.C(colID).Asc())

	transactions, err = selectAll(ctx, r, opFindTransactions, selectStmt, scanTransaction)
	if err != nil {
		return nil, err
	}

	if err = r.attachLines(ctx, opFindTransactions, transactions); err != nil {
		return nil, err
	}

	return transactions, nil
}

// SaveTransaction appends a transaction header and returns its identity.
// A transaction without an ID gets a time-ordered one. Lines are stored with SaveTrnQuantities.
func (r *repository) SaveTransaction(
	ctx context.Context,
	transaction circulation.Transaction,
) (transactionID uuid.UUID, err error) {

	ctx, observer := r.s.startOperation(ctx, opSaveTransaction)
	defer func() { observer.finish(err) }()

	transactionID = transaction.ID
	if transactionID == uuid.Nil {
		if transactionID, err = uuid.NewV7(); err != nil {
			return uuid.Nil, errors.Join(circulation.ErrSavingFailed, err)
		}
	}

	detailsJSON, marshalErr := json.Marshal(transaction.Details)
	if marshalErr != nil {
		return uuid.Nil, errors.Join(circulation.ErrMarshalingDetailsFailed, marshalErr)
	}

	insertStmt := r.s.builder().
		Insert(r.s.table(tableTransactions)).
		Rows(goqu.Record{
			colID:              transactionID.String(),
			colTransactionType: string(transaction.Type),
			colOccurredAt:      transaction.OccurredAt.UTC(),
			colLibrarianID:     nullableID(transaction.LibrarianID),
			colLoanerID:        nullableID(transaction.LoanerID),
			colDetails:         goqu.L(castJsonb, string(detailsJSON)),
		})

	sqlQuery, err := toSQL(insertStmt)
	if err != nil {
		return uuid.Nil, err
	}

	if _, err = r.exec(ctx, opSaveTransaction, sqlQuery, circulation.ErrSavingFailed); err != nil {
		return uuid.Nil, err
	}

	return transactionID, nil
}

// SaveTrnQuantities appends one line of a transaction.
func (r *repository) SaveTrnQuantities(ctx context.Context, quantities circulation.TrnQuantities) (err error) {
	ctx, observer := r.s.startOperation(ctx, opSaveTrnQuantities)
	defer func() { observer.finish(err) }()

	insertStmt := r.s.builder().
		Insert(r.s.table(tableTrnQuantities)).
		Rows(goqu.Record{
			colTransactionID: quantities.TransactionID.String(),
			colBookID:        quantities.BookID.String(),
			colCopies:        quantities.Copies,
		})

	sqlQuery, err := toSQL(insertStmt)
	if err != nil {
		return err
	}

	_, err = r.exec(ctx, opSaveTrnQuantities, sqlQuery, circulation.ErrSavingFailed)

	return err
}

func (r *repository) loansSelect() *goqu.SelectDataset {
	return r.s.builder().
		From(r.s.table(tableLoans)).
		Select(colID, colLoanerID, colBookID, colCopies, colBorrowDate, colDueDate, colOpenedAt)
}

func (r *repository) transactionsSelect() *goqu.SelectDataset {
	return r.s.builder().
		From(r.s.table(tableTransactions)).
		Select(colID, colTransactionType, colOccurredAt, colLibrarianID, colLoanerID, colDetails)
}

// attachLines loads the trn_quantities rows of the given transactions in insertion order.
func (r *repository) attachLines(ctx context.Context, action string, transactions circulation.Transactions) error {
	if len(transactions) == 0 {
		return nil
	}

	ids := make([]string, 0, len(transactions))
	positions := make(map[uuid.UUID]int, len(transactions))

	for i, transaction := range transactions {
		ids = append(ids, transaction.ID.String())
		positions[transaction.ID] = i
	}

	selectStmt := r.s.builder().
		From(r.s.table(tableTrnQuantities)).
		Select(colTransactionID, colBookID, colCopies).
		Where(goqu.C(colTransactionID).In(ids)).
		Order(goqu.C(colSeq).Asc())

	lines, err := selectAll(ctx, r, action, selectStmt, scanTrnQuantities)
	if err != nil {
		return err
	}

	for _, line := range lines {
		i := positions[line.TransactionID]
		transactions[i].Lines = append(transactions[i].Lines, circulation.BookCopies{
			BookID: line.BookID,
			Copies: line.Copies,
		})
	}

	return nil
}

// selectAll builds, runs and scans a select statement.
func selectAll[T any](
	ctx context.Context,
	r *repository,
	action string,
	selectStmt *goqu.SelectDataset,
	scan func(adapters.DBRows) (T, error),
) ([]T, error) {

	sqlQuery, err := toSQL(selectStmt)
	if err != nil {
		return nil, err
	}

	rows, err := r.query(ctx, action, sqlQuery)
	if err != nil {
		return nil, err
	}

	return collectRows(ctx, r, rows, scan)
}

// insertVersioned runs the insert of a versioned row. A duplicate ID means another writer won.
func (r *repository) insertVersioned(ctx context.Context, action string, insertStmt *goqu.InsertDataset) error {
	sqlQuery, err := toSQL(insertStmt)
	if err != nil {
		return err
	}

	_, err = r.exec(ctx, action, sqlQuery, circulation.ErrSavingFailed)
	if err != nil && adapters.IsUniqueViolation(err) {
		return errors.Join(circulation.ErrConcurrencyConflict, err)
	}

	return err
}

// updateVersioned runs the optimistic-lock update of a versioned row.
func (r *repository) updateVersioned(ctx context.Context, action string, updateStmt *goqu.UpdateDataset) error {
	sqlQuery, err := toSQL(updateStmt)
	if err != nil {
		return err
	}

	rowsAffected, err := r.exec(ctx, action, sqlQuery, circulation.ErrSavingFailed)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return circulation.ErrConcurrencyConflict
	}

	return nil
}

// deleteOne runs a delete statement that must hit exactly one row.
func (r *repository) deleteOne(
	ctx context.Context,
	action string,
	deleteStmt *goqu.DeleteDataset,
	entity string,
	id uuid.UUID,
) error {

	sqlQuery, err := toSQL(deleteStmt)
	if err != nil {
		return err
	}

	rowsAffected, err := r.exec(ctx, action, sqlQuery, circulation.ErrDeletingFailed)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s %s", circulation.ErrRecordNotFound, entity, id)
	}

	return nil
}

func nullableID(id uuid.NullUUID) any {
	if !id.Valid {
		return nil
	}

	return id.UUID.String()
}
