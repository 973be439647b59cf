// Package processtransaction implements the Process Transaction use case: a librarian lends,
// takes back, or extends the loan of one or more books for a loaner.
//
// The work runs as Validate -> Process inside one Store transaction. Validate resolves the librarian,
// the loaner, every book and the loaner's open loans, merges duplicate book entries and checks all
// business rules before anything is written. Process then adjusts book inventory, opens, shrinks,
// closes or extends loans and appends the Transaction with one quantities row per book.
// A failed rule aborts the transaction, so no partial effects become visible.
//
// Concurrent requests touching the same books or loaner are serialized by the Store.
// When the Store reports a concurrency conflict the CommandHandler retries the whole unit of work.
package processtransaction
