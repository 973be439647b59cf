// Package postgreswrapper creates a postgresengine.Store on the test database through the
// database adapter named by ADAPTER_TYPE (pgx.pool, sql.db or sqlx.db, default pgx.pool).
package postgreswrapper
