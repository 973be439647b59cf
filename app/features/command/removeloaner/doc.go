// Package removeloaner implements the Remove Loaner use case.
//
// A loaner can only be removed once every borrowed copy is back. The loaner's past transactions
// survive the removal with their loaner reference cleared, so the ledger stays complete.
package removeloaner
