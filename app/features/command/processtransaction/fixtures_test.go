package processtransaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/app/features/command/processtransaction"
	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/memengine"
)

var fakeNow = time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store     *memengine.Store
	handler   processtransaction.CommandHandler
	librarian circulation.Librarian
	loaner    circulation.Loaner
}

func givenFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memengine.NewStore()

	librarian := circulation.Librarian{ID: uuid.New(), Name: "Lin"}
	require.NoError(t, store.SaveLibrarian(ctx, librarian))

	return fixture{
		store:     store,
		handler:   processtransaction.NewCommandHandler(store, processtransaction.WithClock(func() time.Time { return fakeNow })),
		librarian: librarian,
		loaner:    givenLoaner(t, store, "Ada"),
	}
}

func givenLoaner(t *testing.T, store *memengine.Store, name string) circulation.Loaner {
	t.Helper()

	loaner, err := store.SaveLoaner(context.Background(), circulation.Loaner{
		ID:   uuid.New(),
		Name: name,
		Kind: circulation.Student,
	})
	require.NoError(t, err)

	return loaner
}

func givenBook(t *testing.T, store *memengine.Store, total, available int) circulation.Book {
	t.Helper()

	book, err := store.SaveBook(context.Background(), circulation.Book{
		ID:                uuid.New(),
		Title:             "The Go Programming Language",
		TotalQuantity:     total,
		AvailableQuantity: available,
	})
	require.NoError(t, err)

	return book
}

func (f fixture) borrow(books []circulation.BookCopies, borrowDate, dueDate string) processtransaction.Command {
	return processtransaction.BuildCommand(circulation.Borrow, f.loaner.ID, f.librarian.ID, books, borrowDate, dueDate)
}

func (f fixture) giveBack(books []circulation.BookCopies) processtransaction.Command {
	return processtransaction.BuildCommand(circulation.Return, f.loaner.ID, f.librarian.ID, books, "", "")
}

func (f fixture) extend(books []circulation.BookCopies, dueDate string) processtransaction.Command {
	return processtransaction.BuildCommand(circulation.Extend, f.loaner.ID, f.librarian.ID, books, "", dueDate)
}

func (f fixture) handle(t *testing.T, command processtransaction.Command) processtransaction.Result {
	t.Helper()

	result, err := f.handler.Handle(context.Background(), command)
	require.NoError(t, err)

	return result
}

func (f fixture) bookState(t *testing.T, bookID uuid.UUID) circulation.Book {
	t.Helper()

	book, err := f.store.FindBookByID(context.Background(), bookID)
	require.NoError(t, err)

	return book
}

func (f fixture) openLoans(t *testing.T) circulation.Loans {
	t.Helper()

	loans, err := f.store.FindOpenLoans(context.Background(), f.loaner.ID)
	require.NoError(t, err)

	return loans
}

func copiesOf(bookID uuid.UUID, copies int) circulation.BookCopies {
	return circulation.BookCopies{BookID: bookID, Copies: copies}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
