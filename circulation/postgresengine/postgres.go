package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

const (
	dialectPostgres = "postgres"

	tableBooks         = "books"
	tableLoaners       = "loaners"
	tableLibrarians    = "librarians"
	tableLoans         = "loans"
	tableTransactions  = "transactions"
	tableTrnQuantities = "trn_quantities"

	colID                = "id"
	colTitle             = "title"
	colTotalQuantity     = "total_quantity"
	colAvailableQuantity = "available_quantity"
	colVersion           = "version"
	colName              = "name"
	colKind              = "kind"
	colLoanerID          = "loaner_id"
	colBookID            = "book_id"
	colLibrarianID       = "librarian_id"
	colCopies            = "copies"
	colBorrowDate        = "borrow_date"
	colDueDate           = "due_date"
	colOpenedAt          = "opened_at"
	colTransactionType   = "transaction_type"
	colOccurredAt        = "occurred_at"
	colDetails           = "details"
	colTransactionID     = "transaction_id"
	colSeq               = "seq"

	castJsonb        = "?::jsonb"
	exprVersionPlus1 = "version + 1"
	exprExcludedPfx  = "EXCLUDED."

	logMsgOperation           = "circulation store operation: "
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperationFailed     = "circulation store operation failed"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgRollbackFailed      = "failed to roll back database transaction"
	logMsgTransactionDone     = "transaction committed"
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrOperation          = "operation"
	logAttrDurationMS         = "duration_ms"

	metricOperationDuration    = "circulation_store_operation_duration_seconds"
	metricDatabaseErrors       = "circulation_store_database_errors_total"
	metricConcurrencyConflicts = "circulation_store_concurrency_conflicts_total"

	spanNamePrefix      = "circulation.store."
	spanAttrOperation   = "operation"
	spanAttrConsistency = "consistency"
	spanAttrDurationMS  = "duration_ms"
	spanAttrError       = "error"
	labelStatus         = "status"

	statusSuccess             = "success"
	statusError               = "error"
	statusNotFound            = "not_found"
	statusConcurrencyConflict = "concurrency_conflict"

	opFindBook          = "find_book"
	opSaveBook          = "save_book"
	opFindLoaner        = "find_loaner"
	opSaveLoaner        = "save_loaner"
	opDeleteLoaner      = "delete_loaner"
	opFindLibrarian     = "find_librarian"
	opSaveLibrarian     = "save_librarian"
	opDeleteLibrarian   = "delete_librarian"
	opFindOpenLoans     = "find_open_loans"
	opFindOverdueLoans  = "find_overdue_loans"
	opSaveLoan          = "save_loan"
	opDeleteLoan        = "delete_loan"
	opFindTransaction   = "find_transaction"
	opFindTransactions  = "find_transactions_by_loaner"
	opSaveTransaction   = "save_transaction"
	opSaveTrnQuantities = "save_trn_quantities"
	opTransaction       = "transaction"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

var _ circulation.Store = (*Store)(nil)

// Store is the PostgreSQL implementation of circulation.Store.
//
// Reads and writes made directly on the Store run in their own implicit transaction.
// WithinTransaction runs a unit of work in one SERIALIZABLE transaction in which Book and Loaner
// reads take row locks (SELECT ... FOR UPDATE), so concurrent requests for the same rows queue up
// instead of failing late. Serialization failures and deadlocks surface as circulation.ErrConcurrencyConflict.
type Store struct {
	*repository

	db               adapters.DBAdapter
	schema           string
	logger           Logger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
	contextualLogger ContextualLogger
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store using a pgx Pool for the primary and one for a replica.
// Reads outside of a transaction go to the replica when the context carries circulation.EventualConsistency.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	if replica == nil {
		return NewStoreFromPGXPool(db, options...)
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{db: db}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.repository = &repository{s: s, db: db}

	return s, nil
}

// WithinTransaction runs fn in a SERIALIZABLE transaction and commits if fn returns nil.
// Any error from fn, and any panic, rolls the transaction back.
func (s *Store) WithinTransaction(ctx context.Context, fn circulation.TxFunc) (err error) {
	ctx, observer := s.startOperation(ctx, opTransaction)
	defer func() { observer.finish(err) }()

	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		return errors.Join(circulation.ErrBeginTransactionFailed, s.translate(beginErr))
	}

	committed := false
	defer func() {
		if committed {
			return
		}

		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !isTxClosed(rollbackErr) {
			s.logWarn(ctx, logMsgRollbackFailed, rollbackErr)
		}
	}()

	if fnErr := fn(ctx, &repository{s: s, db: tx, inTx: true}); fnErr != nil {
		return fnErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return errors.Join(circulation.ErrCommitTransactionFailed, s.translate(commitErr))
	}

	committed = true
	s.logOperation(ctx, logMsgTransactionDone)

	return nil
}

func isTxClosed(err error) bool {
	return errors.Is(err, sql.ErrTxDone) || errors.Is(err, pgx.ErrTxClosed)
}

// translate turns driver errors that mean "lost a race" into circulation.ErrConcurrencyConflict.
func (s *Store) translate(err error) error {
	if adapters.IsSerializationFailure(err) {
		return errors.Join(circulation.ErrConcurrencyConflict, err)
	}

	return err
}

// table returns the qualified table identifier.
func (s *Store) table(name string) exp.IdentifierExpression {
	if s.schema == "" {
		return goqu.T(name)
	}

	return goqu.S(s.schema).Table(name)
}

// builder returns the goqu dialect all statements are built with.
func (s *Store) builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// repository implements circulation.Repository on top of a pool or a running transaction.
type repository struct {
	s    *Store
	db   adapters.DBQuerier
	inTx bool
}

// query executes a query and returns the rows, translating serialization failures.
func (r *repository) query(ctx context.Context, action string, sqlQuery sqlQueryString) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, sqlQuery)
	r.s.logSQL(ctx, sqlQuery, action, time.Since(start))

	if err != nil {
		return nil, errors.Join(circulation.ErrQueryingFailed, r.s.translate(err))
	}

	return rows, nil
}

// exec executes a statement and returns the affected row count, joining failures with the given sentinel.
func (r *repository) exec(
	ctx context.Context,
	action string,
	sqlQuery sqlQueryString,
	failure error,
) (rowsAffectedInt64, error) {

	start := time.Now()
	result, err := r.db.Exec(ctx, sqlQuery)
	r.s.logSQL(ctx, sqlQuery, action, time.Since(start))

	if err != nil {
		return 0, errors.Join(failure, r.s.translate(err))
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, errors.Join(circulation.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (r *repository) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		r.s.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// lockForUpdate adds FOR UPDATE to reads made inside a transaction.
func (r *repository) lockForUpdate(selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	if !r.inTx {
		return selectStmt
	}

	return selectStmt.ForUpdate(exp.Wait)
}

// collectRows scans all rows with scan, closing the rows afterward.
func collectRows[T any](
	ctx context.Context,
	r *repository,
	rows adapters.DBRows,
	scan func(adapters.DBRows) (T, error),
) ([]T, error) {

	defer r.closeRows(ctx, rows)

	items := make([]T, 0)

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, errors.Join(circulation.ErrScanningDBRowFailed, err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(circulation.ErrQueryingFailed, r.s.translate(err))
	}

	return items, nil
}

func toSQL(stmt interface {
	ToSQL() (string, []interface{}, error)
}) (sqlQueryString, error) {

	sqlQuery, _, err := stmt.ToSQL()
	if err != nil {
		return "", errors.Join(circulation.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}
