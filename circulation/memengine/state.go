package memengine

import (
	"maps"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// state is one consistent snapshot of all rows.
type state struct {
	books            map[uuid.UUID]circulation.Book
	loaners          map[uuid.UUID]circulation.Loaner
	librarians       map[uuid.UUID]circulation.Librarian
	loans            map[uuid.UUID]circulation.Loan
	transactions     map[uuid.UUID]circulation.Transaction
	transactionOrder []uuid.UUID
}

func newState() *state {
	return &state{
		books:            make(map[uuid.UUID]circulation.Book),
		loaners:          make(map[uuid.UUID]circulation.Loaner),
		librarians:       make(map[uuid.UUID]circulation.Librarian),
		loans:            make(map[uuid.UUID]circulation.Loan),
		transactions:     make(map[uuid.UUID]circulation.Transaction),
		transactionOrder: make([]uuid.UUID, 0),
	}
}

// clone returns a deep copy, transaction lines included.
func (st *state) clone() *state {
	transactions := make(map[uuid.UUID]circulation.Transaction, len(st.transactions))
	for id, transaction := range st.transactions {
		transactions[id] = copyTransaction(transaction)
	}

	order := make([]uuid.UUID, len(st.transactionOrder))
	copy(order, st.transactionOrder)

	return &state{
		books:            maps.Clone(st.books),
		loaners:          maps.Clone(st.loaners),
		librarians:       maps.Clone(st.librarians),
		loans:            maps.Clone(st.loans),
		transactions:     transactions,
		transactionOrder: order,
	}
}

func copyTransaction(transaction circulation.Transaction) circulation.Transaction {
	lines := make([]circulation.BookCopies, len(transaction.Lines))
	copy(lines, transaction.Lines)
	transaction.Lines = lines

	return transaction
}
