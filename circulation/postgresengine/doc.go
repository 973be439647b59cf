// Package postgresengine provides a PostgreSQL implementation of the circulation.Store interface.
//
// Books, loaners, librarians, loans, transactions and transaction lines live in plain tables
// (see the migrations directory). All SQL is built with goqu and executed through one of the
// supported database adapters (pgx.Pool, sql.DB, sqlx.DB).
//
// Key features:
//   - SERIALIZABLE units of work via Store.WithinTransaction
//   - Row locks on books and loaners read inside a unit of work
//   - Optimistic version checks on books and loaners
//   - Serialization failures and deadlocks reported as circulation.ErrConcurrencyConflict
//   - Optional replica pool for reads made with circulation.EventualConsistency
//   - Logging, metrics and tracing through dependency-free interfaces
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(db)
//
//	// With a replica and observability
//	store, _ := postgresengine.NewStoreFromPGXPoolAndReplica(
//		db,
//		replica,
//		postgresengine.WithContextualLogger(logger),
//		postgresengine.WithMetrics(metricsCollector),
//		postgresengine.WithTracing(tracingCollector),
//	)
//
//	err := store.WithinTransaction(ctx, func(ctx context.Context, repo circulation.Repository) error {
//		book, err := repo.FindBookByID(ctx, bookID) // locked until commit
//		...
//	})
package postgresengine
