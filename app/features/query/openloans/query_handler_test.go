package openloans_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/app/features/command/processtransaction"
	"github.com/AntonStoeckl/library-circulation-go/app/features/query/openloans"
	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/memengine"
)

func Test_QueryHandler_Handle_ReturnsOpenLoansWithOverdueFlag(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memengine.NewStore()

	loaner, err := store.SaveLoaner(ctx, circulation.Loaner{ID: uuid.New(), Name: "Ada", Kind: circulation.Student})
	require.NoError(t, err)

	librarian := circulation.Librarian{ID: uuid.New(), Name: "Lin"}
	require.NoError(t, store.SaveLibrarian(ctx, librarian))

	dune, err := store.SaveBook(ctx, circulation.Book{ID: uuid.New(), Title: "Dune", TotalQuantity: 3, AvailableQuantity: 3})
	require.NoError(t, err)

	emma, err := store.SaveBook(ctx, circulation.Book{ID: uuid.New(), Title: "Emma", TotalQuantity: 3, AvailableQuantity: 3})
	require.NoError(t, err)

	transactions := processtransaction.NewCommandHandler(store)

	_, err = transactions.Handle(ctx, processtransaction.BuildCommand(
		circulation.Borrow, loaner.ID, librarian.ID,
		[]circulation.BookCopies{{BookID: dune.ID, Copies: 2}}, "20250301", "20250310",
	))
	require.NoError(t, err)

	_, err = transactions.Handle(ctx, processtransaction.BuildCommand(
		circulation.Borrow, loaner.ID, librarian.ID,
		[]circulation.BookCopies{{BookID: emma.ID, Copies: 1}}, "20250305", "",
	))
	require.NoError(t, err)

	asOf := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	handler := openloans.NewQueryHandler(store, func() time.Time { return asOf })

	// act
	result, err := handler.Handle(ctx, openloans.BuildQuery(loaner.ID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, loaner.ID, result.LoanerID)
	assert.Equal(t, "Ada", result.LoanerName)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 3, result.OutstandingCopies)

	require.Len(t, result.Loans, 2)
	assert.Equal(t, "Dune", result.Loans[0].Title)
	assert.True(t, result.Loans[0].Overdue)
	assert.Equal(t, "Emma", result.Loans[1].Title)
	assert.False(t, result.Loans[1].Overdue)
}

func Test_QueryHandler_Handle_EmptyForLoanerWithoutLoans(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memengine.NewStore()

	loaner, err := store.SaveLoaner(ctx, circulation.Loaner{ID: uuid.New(), Name: "Ada", Kind: circulation.Student})
	require.NoError(t, err)

	// act
	result, err := openloans.NewQueryHandler(store, nil).Handle(ctx, openloans.BuildQuery(loaner.ID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Loans)
}

func Test_QueryHandler_Handle_UnknownLoaner(t *testing.T) {
	// act
	_, err := openloans.NewQueryHandler(memengine.NewStore(), nil).Handle(
		context.Background(),
		openloans.BuildQuery(uuid.New()),
	)

	// assert
	assert.ErrorIs(t, err, circulation.ErrLoanerNotFound)
}
