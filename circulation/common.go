package circulation

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrEmptySchemaNameSupplied = errors.New("empty schema name supplied")
var ErrConcurrencyConflict = errors.New("concurrency error, no rows were affected")
var ErrRecordNotFound = errors.New("record not found")

var ErrBuildingQueryFailed = errors.New("building the query failed")
var ErrQueryingFailed = errors.New("querying the database failed")
var ErrScanningDBRowFailed = errors.New("scanning the database row failed")
var ErrSavingFailed = errors.New("saving to the database failed")
var ErrDeletingFailed = errors.New("deleting from the database failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrBeginTransactionFailed = errors.New("beginning the database transaction failed")
var ErrCommitTransactionFailed = errors.New("committing the database transaction failed")
var ErrMarshalingDetailsFailed = errors.New("marshaling transaction details failed")
var ErrUnmarshalingDetailsFailed = errors.New("unmarshaling transaction details failed")
