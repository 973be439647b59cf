package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AntonStoeckl/library-circulation-go/app/features/query/openloans"
	"github.com/AntonStoeckl/library-circulation-go/app/features/query/overdueloans"
	"github.com/AntonStoeckl/library-circulation-go/app/features/query/transactionhistory"
	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/memengine"
)

type cliFixture struct {
	app       *application
	store     *memengine.Store
	loaner    circulation.Loaner
	librarian circulation.Librarian
	book      circulation.Book
}

func givenCLI(t *testing.T) cliFixture {
	t.Helper()
	ctx := context.Background()
	store := memengine.NewStore()

	librarian := circulation.Librarian{ID: uuid.New(), Name: "Lin"}
	require.NoError(t, store.SaveLibrarian(ctx, librarian))

	loaner, err := store.SaveLoaner(ctx, circulation.Loaner{ID: uuid.New(), Name: "Ada", Kind: circulation.Faculty})
	require.NoError(t, err)

	book, err := store.SaveBook(ctx, circulation.Book{ID: uuid.New(), Title: "SICP", TotalQuantity: 5, AvailableQuantity: 5})
	require.NoError(t, err)

	app, err := newApplication(store, config.WrapZapLogger(zaptest.NewLogger(t)), config.Telemetry{})
	require.NoError(t, err)

	return cliFixture{app: app, store: store, loaner: loaner, librarian: librarian, book: book}
}

func (f cliFixture) run(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	out := &bytes.Buffer{}

	return out, f.app.run(context.Background(), args, out)
}

func decode[T any](t *testing.T, out *bytes.Buffer) T {
	t.Helper()
	var value T
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(out.Bytes(), &value))

	return value
}

func Test_Run_BorrowThenListOpenLoans(t *testing.T) {
	// arrange
	f := givenCLI(t)

	// act
	_, err := f.run(t, "borrow",
		"-loaner", f.loaner.ID.String(),
		"-librarian", f.librarian.ID.String(),
		"-book", fmt.Sprintf("%s:2", f.book.ID),
		"-borrow-date", "20250401",
		"-due-date", "20250415",
	)
	require.NoError(t, err)

	out, err := f.run(t, "open-loans", "-loaner", f.loaner.ID.String())

	// assert
	require.NoError(t, err)
	result := decode[openloans.OpenLoans](t, out)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 2, result.OutstandingCopies)

	book, err := f.store.FindBookByID(context.Background(), f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, book.AvailableQuantity)
}

func Test_Run_HistoryAndOverdue(t *testing.T) {
	// arrange
	f := givenCLI(t)
	_, err := f.run(t, "borrow",
		"-loaner", f.loaner.ID.String(),
		"-librarian", f.librarian.ID.String(),
		"-book", f.book.ID.String(),
		"-borrow-date", "20250401",
		"-due-date", "20250410",
	)
	require.NoError(t, err)

	// act
	historyOut, historyErr := f.run(t, "history", "-loaner", f.loaner.ID.String())
	overdueOut, overdueErr := f.run(t, "overdue", "-as-of", "20250420")

	// assert
	require.NoError(t, historyErr)
	history := decode[transactionhistory.TransactionHistory](t, historyOut)
	require.Equal(t, 1, history.Count)
	assert.Equal(t, "20250401", history.Entries[0].BorrowDate)

	require.NoError(t, overdueErr)
	overdue := decode[overdueloans.OverdueLoans](t, overdueOut)
	require.Equal(t, 1, overdue.Count)
	assert.Equal(t, 10, overdue.Loans[0].DaysOverdue)
}

func Test_Run_ReturnsBusinessRuleViolations(t *testing.T) {
	// arrange
	f := givenCLI(t)

	// act
	_, err := f.run(t, "return",
		"-loaner", f.loaner.ID.String(),
		"-librarian", f.librarian.ID.String(),
		"-book", f.book.ID.String(),
	)

	// assert
	assert.ErrorIs(t, err, circulation.ErrOverReturn)
}

func Test_Run_RemoveLoaner(t *testing.T) {
	// arrange
	f := givenCLI(t)

	// act
	_, err := f.run(t, "remove-loaner", "-loaner", f.loaner.ID.String())

	// assert
	require.NoError(t, err)
	_, err = f.store.FindLoanerByID(context.Background(), f.loaner.ID)
	assert.ErrorIs(t, err, circulation.ErrRecordNotFound)
}

func Test_Run_RejectsUnusableArguments(t *testing.T) {
	f := givenCLI(t)

	testCases := []struct {
		name string
		args []string
	}{
		{name: "no operation", args: nil},
		{name: "unknown operation", args: []string{"renew"}},
		{name: "malformed book flag", args: []string{"borrow", "-book", "not-a-uuid:1"}},
		{name: "malformed copies", args: []string{"borrow", "-book", uuid.NewString() + ":many"}},
		{name: "malformed as-of date", args: []string{"overdue", "-as-of", "2025-04-01"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := f.run(t, tc.args...)

			// assert
			assert.Error(t, err)
		})
	}
}

func Test_BookCopiesFlag_Set(t *testing.T) {
	// arrange
	bookID := uuid.New()
	books := bookCopiesFlag{}

	// act
	require.NoError(t, books.Set(bookID.String()))
	require.NoError(t, books.Set(bookID.String()+":3"))

	// assert
	assert.Equal(t, bookCopiesFlag{
		{BookID: bookID, Copies: 1},
		{BookID: bookID, Copies: 3},
	}, books)
	assert.Equal(t, fmt.Sprintf("%s:1,%s:3", bookID, bookID), books.String())
}
