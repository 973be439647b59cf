package shell

import (
	"context"
)

// Command represents the contract for all command types of the circulation application.
// The CommandType method enables polymorphic handling and observability instrumentation.
// It must work on the zero value, the observable wrapper reads it from there.
type Command interface {
	CommandType() string
}

// CommandResult is implemented by everything a command handler returns.
// It exposes the execution metadata the observable wrapper turns into metrics.
type CommandResult interface {
	Outcome() HandlerResult
}

// CommandHandler defines the contract for components that execute commands with pure business logic.
// Implementations handle retries themselves and leave observability to observable.CommandWrapper.
type CommandHandler[C Command, R CommandResult] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// Query represents the contract for all query types of the circulation application.
// Like CommandType, QueryType must work on the zero value.
type Query interface {
	QueryType() string
}

// QueryHandler defines the contract for components that answer queries.
// Query handlers read with eventual consistency unless a query says otherwise.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
