// Package transactionhistory reads the circulation ledger, either all transactions of one loaner
// in the order they happened or a single transaction by its ID.
//
// A single transaction stays readable after its loaner or librarian was removed,
// the result then shows no loaner or librarian for it.
package transactionhistory
