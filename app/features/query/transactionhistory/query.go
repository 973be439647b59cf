package transactionhistory

import (
	"github.com/google/uuid"
)

const (
	queryType = "TransactionHistory"
)

// Query represents the intent to read ledger entries. Exactly one of the IDs is set.
type Query struct {
	LoanerID      uuid.UUID
	TransactionID uuid.UUID
}

// BuildQueryByLoaner creates a Query for all transactions of a loaner.
func BuildQueryByLoaner(loanerID uuid.UUID) Query {
	return Query{
		LoanerID: loanerID,
	}
}

// BuildQueryByTransaction creates a Query for one transaction.
func BuildQueryByTransaction(transactionID uuid.UUID) Query {
	return Query{
		TransactionID: transactionID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
