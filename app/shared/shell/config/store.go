package config

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/memengine"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine"
)

// OpenStore builds the Store the configuration asks for. The returned close function releases
// the connection pools and must be called once the Store is no longer used.
func OpenStore(
	ctx context.Context,
	cfg *Config,
	logger *ZapLogger,
	telemetry Telemetry,
) (circulation.Store, func(), error) {

	if cfg.UseMemoryStore {
		return memengine.NewStore(memengine.WithLogger(logger)), func() {}, nil
	}

	options := []postgresengine.Option{postgresengine.WithContextualLogger(logger)}
	if telemetry.Metrics != nil {
		options = append(options, postgresengine.WithMetrics(telemetry.Metrics))
	}

	if telemetry.Tracing != nil {
		options = append(options, postgresengine.WithTracing(telemetry.Tracing))
	}

	if cfg.PostgresSchema != "" {
		options = append(options, postgresengine.WithSchema(cfg.PostgresSchema))
	}

	switch cfg.AdapterType {
	case AdapterSQLDB:
		db, err := NewSQLDB(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	case AdapterSQLX:
		db, err := NewSQLX(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	case AdapterPGXPool:
		return openPGXStore(ctx, cfg, options)

	default:
		return nil, nil, fmt.Errorf("unknown adapter type %q", cfg.AdapterType)
	}
}

func openPGXStore(
	ctx context.Context,
	cfg *Config,
	options []postgresengine.Option,
) (circulation.Store, func(), error) {

	primary, err := NewPGXPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}

	var replica *pgxpool.Pool

	if cfg.PostgresReplicaDSN != "" {
		if replica, err = NewPGXPool(ctx, cfg.PostgresReplicaDSN); err != nil {
			primary.Close()
			return nil, nil, err
		}
	}

	closeAll := func() {
		if replica != nil {
			replica.Close()
		}

		primary.Close()
	}

	store, err := postgresengine.NewStoreFromPGXPoolAndReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}
