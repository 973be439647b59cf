package circulation

import "fmt"

// Decrement takes copies out of the available stock of a book.
// It fails with ErrInsufficientCopies when fewer than the requested copies are available.
func (b Book) Decrement(copies int) (Book, error) {
	if copies < 1 {
		return b, fmt.Errorf("%w: cannot take %d copies of book %s", ErrInvalidQuantity, copies, b.ID)
	}

	if copies > b.AvailableQuantity {
		return b, fmt.Errorf(
			"%w: requested %d copies of book %s, only %d available",
			ErrInsufficientCopies, copies, b.ID, b.AvailableQuantity,
		)
	}

	b.AvailableQuantity -= copies

	return b, nil
}

// Increment puts copies back into the available stock of a book.
// It fails with ErrInventoryOverflow when the available count would exceed the total.
func (b Book) Increment(copies int) (Book, error) {
	if copies < 1 {
		return b, fmt.Errorf("%w: cannot put back %d copies of book %s", ErrInvalidQuantity, copies, b.ID)
	}

	if b.AvailableQuantity+copies > b.TotalQuantity {
		return b, fmt.Errorf(
			"%w: book %s has %d of %d copies available, cannot put back %d",
			ErrInventoryOverflow, b.ID, b.AvailableQuantity, b.TotalQuantity, copies,
		)
	}

	b.AvailableQuantity += copies

	return b, nil
}
