// Package adapters provide database adapter implementations for the PostgreSQL circulation store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, including SERIALIZABLE transactions, so the store works
// with any supported connection type.
//
// Driver errors stay untouched here, except for IsSerializationFailure and IsUniqueViolation,
// which recognize the relevant SQLSTATE codes for both pgx and lib/pq.
package adapters
