// Package removelibrarian implements the Remove Librarian use case.
// Transactions the librarian facilitated stay in the ledger with their librarian reference cleared.
package removelibrarian
