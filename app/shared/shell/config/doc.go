// Package config turns environment variables into a running circulation Store.
//
// LoadFromEnv reads and validates the settings, the pool factories open pgx, database/sql or sqlx
// connections with tuned pool settings, NewZapLogger builds the zap-backed logger the stores and
// handlers log through, and OpenStore picks the storage engine the configuration asks for.
// With OTEL_ENABLED, NewOTelProviders installs OTLP exporting OpenTelemetry providers and NewTelemetry
// hands collectors on top of them to the store and the handler wrappers.
// A .env file is loaded by the entry points with godotenv before LoadFromEnv runs.
package config
