package overdueloans_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/app/features/command/processtransaction"
	"github.com/AntonStoeckl/library-circulation-go/app/features/query/overdueloans"
	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/memengine"
)

func Test_QueryHandler_Handle_ListsLoansPastTheirDueDate(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memengine.NewStore()

	librarian := circulation.Librarian{ID: uuid.New(), Name: "Lin"}
	require.NoError(t, store.SaveLibrarian(ctx, librarian))

	book, err := store.SaveBook(ctx, circulation.Book{ID: uuid.New(), Title: "Middlemarch", TotalQuantity: 5, AvailableQuantity: 5})
	require.NoError(t, err)

	transactions := processtransaction.NewCommandHandler(store)
	borrow := func(dueDate string, copies int) uuid.UUID {
		loaner, saveErr := store.SaveLoaner(ctx, circulation.Loaner{ID: uuid.New(), Name: "Reader", Kind: circulation.Faculty})
		require.NoError(t, saveErr)

		_, handleErr := transactions.Handle(ctx, processtransaction.BuildCommand(
			circulation.Borrow, loaner.ID, librarian.ID,
			[]circulation.BookCopies{{BookID: book.ID, Copies: copies}}, "20250301", dueDate,
		))
		require.NoError(t, handleErr)

		return loaner.ID
	}

	slightlyLate := borrow("20250312", 1)
	veryLate := borrow("20250305", 2)
	borrow("20250315", 1) // due on the query day, not overdue yet

	// act
	result, err := overdueloans.NewQueryHandler(store).Handle(
		ctx,
		overdueloans.BuildQuery(time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), result.AsOf)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 3, result.OverdueCopies)

	require.Len(t, result.Loans, 2)
	assert.Equal(t, veryLate, result.Loans[0].LoanerID)
	assert.Equal(t, 10, result.Loans[0].DaysOverdue)
	assert.Equal(t, slightlyLate, result.Loans[1].LoanerID)
	assert.Equal(t, 3, result.Loans[1].DaysOverdue)
}
