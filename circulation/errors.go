package circulation

import (
	"errors"
)

// Business rule violations. They describe bad input, never transient failures, so they are not retried.
var (
	// ErrInvalidTransactionType is returned when the request type is not BORROW, RETURN or EXTEND.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidDate is returned when a date string does not parse as yyyyMMdd or dates are out of order.
	ErrInvalidDate = errors.New("invalid date")

	// ErrLibrarianRequired is returned when the request names no librarian.
	ErrLibrarianRequired = errors.New("librarian is required")

	// ErrLibrarianNotFound is returned when the named librarian does not exist.
	ErrLibrarianNotFound = errors.New("librarian not found")

	// ErrLoanerRequired is returned when the request names no loaner.
	ErrLoanerRequired = errors.New("loaner is required")

	// ErrLoanerNotFound is returned when the named loaner does not exist.
	ErrLoanerNotFound = errors.New("loaner not found")

	// ErrNoBooksSpecified is returned when the request carries an empty book list.
	ErrNoBooksSpecified = errors.New("no books specified")

	// ErrInvalidQuantity is returned when a copy count is lower than one.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrBookNotFound is returned when a referenced book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrInsufficientCopies is returned when more copies are requested than are available.
	ErrInsufficientCopies = errors.New("insufficient copies available")

	// ErrOverReturn is returned when more copies are returned than the loaner has outstanding.
	ErrOverReturn = errors.New("returning more copies than outstanding")

	// ErrPartialExtensionNotAllowed is returned when an extension does not cover all outstanding copies.
	ErrPartialExtensionNotAllowed = errors.New("partial extension not allowed")

	// ErrLoanerHasOpenLoans is returned when a loaner who still holds books is about to be removed.
	ErrLoanerHasOpenLoans = errors.New("loaner has open loans")
)

// ErrInventoryOverflow signals that returning copies would push a book's available count above its total.
// Validation prevents it, so seeing it means the stored inventory is inconsistent.
var ErrInventoryOverflow = errors.New("available quantity would exceed total quantity")

var businessRuleViolations = []error{
	ErrInvalidTransactionType,
	ErrInvalidDate,
	ErrLibrarianRequired,
	ErrLibrarianNotFound,
	ErrLoanerRequired,
	ErrLoanerNotFound,
	ErrNoBooksSpecified,
	ErrInvalidQuantity,
	ErrBookNotFound,
	ErrInsufficientCopies,
	ErrOverReturn,
	ErrPartialExtensionNotAllowed,
	ErrLoanerHasOpenLoans,
}

// IsBusinessRuleViolation reports whether err (or anything it wraps) is one of the business rule sentinels.
func IsBusinessRuleViolation(err error) bool {
	for _, target := range businessRuleViolations {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
