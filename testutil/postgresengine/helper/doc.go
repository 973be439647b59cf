// Package helper provides the shared setup of the Postgres integration tests: a throwaway
// database in a testcontainer with the goose migrations applied, table cleanup and data fixtures.
//
// Set POSTGRES_TEST_DSN to run against an existing, migrated database instead of a container.
// With -short no database is started and the integration tests skip themselves.
package helper
