package overdueloans

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

const (
	queryType = "OverdueLoans"
)

// Query represents the intent to list the loans overdue on a day.
type Query struct {
	AsOf time.Time
}

// BuildQuery creates a new Query for the day of asOf.
func BuildQuery(asOf time.Time) Query {
	return Query{
		AsOf: circulation.TruncateToDay(asOf),
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
