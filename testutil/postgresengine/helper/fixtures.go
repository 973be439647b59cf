package helper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return id
}

func GivenBookWasSaved(t testing.TB, ctx context.Context, repo circulation.Repository, total, available int) circulation.Book {
	book, err := repo.SaveBook(ctx, circulation.Book{
		ID:                GivenUniqueID(t),
		Title:             "Structure and Interpretation of Computer Programs",
		TotalQuantity:     total,
		AvailableQuantity: available,
	})
	require.NoError(t, err, "error in arranging test data")

	return book
}

func GivenLoanerWasSaved(t testing.TB, ctx context.Context, repo circulation.Repository) circulation.Loaner {
	loaner, err := repo.SaveLoaner(ctx, circulation.Loaner{
		ID:   GivenUniqueID(t),
		Name: "Ada Lovelace",
		Kind: circulation.Student,
	})
	require.NoError(t, err, "error in arranging test data")

	return loaner
}

func GivenLibrarianWasSaved(t testing.TB, ctx context.Context, repo circulation.Repository) circulation.Librarian {
	librarian := circulation.Librarian{ID: GivenUniqueID(t), Name: "Lin"}
	require.NoError(t, repo.SaveLibrarian(ctx, librarian), "error in arranging test data")

	return librarian
}
