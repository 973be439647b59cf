package postgresengine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/app/features/command/processtransaction"
	"github.com/AntonStoeckl/library-circulation-go/app/features/command/removeloaner"
	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell"
	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine"
	"github.com/AntonStoeckl/library-circulation-go/testutil/observability/testdoubles"
	. "github.com/AntonStoeckl/library-circulation-go/testutil/postgresengine/helper"                 //nolint:revive
	. "github.com/AntonStoeckl/library-circulation-go/testutil/postgresengine/helper/postgreswrapper" //nolint:revive
)

func Test_SaveBook_VersionsAndConflicts(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t)
	book := GivenBookWasSaved(t, ctx, store, 4, 4)
	require.Equal(t, 1, book.Version)

	updated, err := store.SaveBook(ctx, book)
	require.NoError(t, err)
	require.Equal(t, 2, updated.Version)

	// act
	_, staleErr := store.SaveBook(ctx, book)
	_, duplicateErr := store.SaveBook(ctx, circulation.Book{ID: book.ID, Title: "dup", TotalQuantity: 1, AvailableQuantity: 1})

	// assert
	assert.ErrorIs(t, staleErr, circulation.ErrConcurrencyConflict)
	assert.ErrorIs(t, duplicateErr, circulation.ErrConcurrencyConflict)

	found, err := store.FindBookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, found)
}

func Test_SaveBook_RejectsAvailableAboveTotal(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t)

	// act
	_, err := store.SaveBook(ctx, circulation.Book{ID: GivenUniqueID(t), Title: "x", TotalQuantity: 1, AvailableQuantity: 2})

	// assert
	assert.ErrorIs(t, err, circulation.ErrSavingFailed)
}

func Test_FindBookByID_NotFound(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	// act
	_, err := wrapper.GetStore().FindBookByID(context.Background(), GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, circulation.ErrRecordNotFound)
}

func Test_WithinTransaction_RollsBackOnError(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t)
	book := GivenBookWasSaved(t, ctx, store, 3, 3)
	failure := errors.New("boom")

	// act
	err := store.WithinTransaction(ctx, func(txCtx context.Context, repo circulation.Repository) error {
		locked, findErr := repo.FindBookByID(txCtx, book.ID)
		require.NoError(t, findErr)

		locked, decErr := locked.Decrement(2)
		require.NoError(t, decErr)

		_, saveErr := repo.SaveBook(txCtx, locked)
		require.NoError(t, saveErr)

		return failure
	})

	// assert
	assert.ErrorIs(t, err, failure)

	found, err := store.FindBookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.AvailableQuantity)
	assert.Equal(t, 1, found.Version)
}

func Test_ProcessTransaction_BorrowAndReturnRoundTrip(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t)
	book := GivenBookWasSaved(t, ctx, store, 5, 5)
	loaner := GivenLoanerWasSaved(t, ctx, store)
	librarian := GivenLibrarianWasSaved(t, ctx, store)
	handler := processtransaction.NewCommandHandler(store)
	books := []circulation.BookCopies{{BookID: book.ID, Copies: 1}, {BookID: book.ID, Copies: 1}}

	// act
	borrowed, borrowErr := handler.Handle(ctx, processtransaction.BuildCommand(
		circulation.Borrow, loaner.ID, librarian.ID, books, "20250401", "",
	))
	openAfterBorrow, findErr := store.FindOpenLoans(ctx, loaner.ID)
	require.NoError(t, findErr)

	_, returnErr := handler.Handle(ctx, processtransaction.BuildCommand(
		circulation.Return, loaner.ID, librarian.ID, books, "", "",
	))

	// assert
	require.NoError(t, borrowErr)
	require.NoError(t, returnErr)

	require.Len(t, openAfterBorrow, 1)
	assert.Equal(t, 2, openAfterBorrow[0].Copies)
	assert.Equal(t, time.Date(2025, 4, 29, 0, 0, 0, 0, time.UTC), openAfterBorrow[0].DueDate)

	found, err := store.FindBookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.AvailableQuantity)

	openAfterReturn, err := store.FindOpenLoans(ctx, loaner.ID)
	require.NoError(t, err)
	assert.Empty(t, openAfterReturn)

	stored, err := store.FindTransactionByID(ctx, borrowed.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, circulation.Borrow, stored.Type)
	assert.Equal(t, []circulation.BookCopies{{BookID: book.ID, Copies: 2}}, stored.Lines)
	require.NotNil(t, stored.Details.BorrowDate)
	assert.Equal(t, "20250401", circulation.FormatDate(*stored.Details.BorrowDate))

	history, err := store.FindTransactionsByLoaner(ctx, loaner.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func Test_RemoveLoaner_NullsReferenceOnTransactions(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t)
	book := GivenBookWasSaved(t, ctx, store, 1, 1)
	loaner := GivenLoanerWasSaved(t, ctx, store)
	librarian := GivenLibrarianWasSaved(t, ctx, store)
	transactions := processtransaction.NewCommandHandler(store)
	books := []circulation.BookCopies{{BookID: book.ID, Copies: 1}}

	borrowed, err := transactions.Handle(ctx, processtransaction.BuildCommand(
		circulation.Borrow, loaner.ID, librarian.ID, books, "20250401", "",
	))
	require.NoError(t, err)

	_, err = removeloaner.NewCommandHandler(store).Handle(ctx, removeloaner.BuildCommand(loaner.ID))
	require.ErrorIs(t, err, circulation.ErrLoanerHasOpenLoans)

	_, err = transactions.Handle(ctx, processtransaction.BuildCommand(
		circulation.Return, loaner.ID, librarian.ID, books, "", "",
	))
	require.NoError(t, err)

	// act
	_, err = removeloaner.NewCommandHandler(store).Handle(ctx, removeloaner.BuildCommand(loaner.ID))

	// assert
	require.NoError(t, err)

	stored, err := store.FindTransactionByID(ctx, borrowed.Transaction.ID)
	require.NoError(t, err)
	assert.False(t, stored.LoanerID.Valid)
	assert.Equal(t, librarian.ID, stored.LibrarianID.UUID)
	assert.Len(t, stored.Lines, 1)
}

func Test_ProcessTransaction_ConcurrentBorrowsNeverOvercommit(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t)
	const requests = 6
	book := GivenBookWasSaved(t, ctx, store, 4, 4)
	librarian := GivenLibrarianWasSaved(t, ctx, store)
	handler := processtransaction.NewCommandHandler(
		store,
		processtransaction.WithRetryOptions(shell.WithMaxAttempts(20), shell.WithBaseDelay(5*time.Millisecond)),
	)

	loaners := make([]circulation.Loaner, requests)
	for i := range loaners {
		loaners[i] = GivenLoanerWasSaved(t, ctx, store)
	}

	var wg sync.WaitGroup
	errs := make([]error, requests)

	// act
	for i := 0; i < requests; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, errs[i] = handler.Handle(ctx, processtransaction.BuildCommand(
				circulation.Borrow, loaners[i].ID, librarian.ID,
				[]circulation.BookCopies{{BookID: book.ID, Copies: 1}}, "20250401", "",
			))
		}(i)
	}

	wg.Wait()

	// assert
	succeeded := 0

	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, circulation.ErrInsufficientCopies)
	}

	assert.Equal(t, 4, succeeded)

	found, err := store.FindBookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.AvailableQuantity)
}

func Test_Store_RecordsOperationMetricsAndSpans(t *testing.T) {
	// setup
	ctx := context.Background()
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)
	logger := testdoubles.NewLoggerSpy(true)

	wrapper := CreateWrapperWithTestConfig(t,
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(tracing),
		postgresengine.WithContextualLogger(logger),
	)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t)

	// act
	_, err := store.FindBookByID(ctx, GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, circulation.ErrRecordNotFound)
	assert.True(t, metrics.HasDurationRecordForMetric("circulation_store_operation_duration_seconds").
		WithOperation("find_book").
		WithStatus("not_found").
		Assert())
	assert.Equal(t, 0, metrics.CountCounterRecordsForMetric("circulation_store_database_errors_total"))
	assert.True(t, tracing.HasFinishedSpan("circulation.store.find_book", "not_found"))
	assert.True(t, logger.HasDebugLog("executed sql for: find_book"))
}
