package openloans

import (
	"github.com/google/uuid"
)

const (
	queryType = "OpenLoans"
)

// Query represents the intent to list the open loans of a loaner.
type Query struct {
	LoanerID uuid.UUID
}

// BuildQuery creates a new Query with the provided loaner ID.
func BuildQuery(loanerID uuid.UUID) Query {
	return Query{
		LoanerID: loanerID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
