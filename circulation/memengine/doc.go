// Package memengine provides an in-memory implementation of the circulation.Store interface.
//
// It keeps the same contract as the PostgreSQL engine: optimistic version checks on books and
// loaners, all-or-nothing units of work, and nulling of loaner and librarian references on
// transactions when the referenced row is deleted. Units of work are serialized by a mutex and
// run against a private copy of the data that replaces the shared state on commit.
//
// The engine is meant for tests, local development and the CLI without a database.
package memengine
