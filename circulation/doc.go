// Package circulation provides the core types and rules for lending books
// from a single-branch library inventory.
//
// This package defines the entities that take part in a circulation transaction,
// the pure rules that keep them consistent, and the storage contracts that the
// different engines (Postgres, in-memory) implement.
//
// Entities:
//   - Book: total and available copy counts, guarded by the inventory ledger rules
//   - Loaner: a student or faculty member who may hold loans
//   - Librarian: the person facilitating a transaction
//   - Loan: copies of one book currently held by one loaner
//   - Transaction: an immutable ledger entry (BORROW, RETURN, EXTEND)
//   - TrnQuantities: one (transaction, book, copies) row per distinct book
//
// Rules:
//   - Book.Decrement / Book.Increment keep 0 <= available <= total
//   - LoanTracker answers "how many copies does this loaner still have" and
//     decides which loan rows to open, shrink, delete or extend
//
// Common usage pattern:
//
//	err := store.WithinTransaction(ctx, func(ctx context.Context, repo Repository) error {
//		book, err := repo.FindBookByID(ctx, bookID)
//		if err != nil {
//			return err
//		}
//
//		book, err = book.Decrement(2)
//		if err != nil {
//			return err // ErrInsufficientCopies
//		}
//
//		_, err = repo.SaveBook(ctx, book)
//		return err
//	})
package circulation
