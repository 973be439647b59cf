package helper

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq" // postgres driver for goose
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/AntonStoeckl/library-circulation-go/migrations"
)

const (
	envTestDSN = "POSTGRES_TEST_DSN"

	postgresImage    = "postgres:17-alpine"
	postgresDatabase = "circulation"
	postgresUser     = "test"
	postgresPassword = "test"
	startupTimeout   = 2 * time.Minute
)

var testDSN string

// RunWithPostgres is meant to be called from TestMain. It provides a migrated database for the
// duration of m.Run and returns its exit code.
func RunWithPostgres(m *testing.M) int {
	flag.Parse()

	if testing.Short() {
		return m.Run()
	}

	if dsn := os.Getenv(envTestDSN); dsn != "" {
		testDSN = dsn
		return m.Run()
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase(postgresDatabase),
		tcpostgres.WithUsername(postgresUser),
		tcpostgres.WithPassword(postgresPassword),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("Failed to start Postgres container: %v", err)
		return 1
	}

	defer func() {
		if terminateErr := testcontainers.TerminateContainer(container); terminateErr != nil {
			log.Printf("Failed to terminate container: %v", terminateErr)
		}
	}()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Printf("Failed to get connection string: %v", err)
		return 1
	}

	if err = Migrate(dsn); err != nil {
		log.Printf("Failed to run migrations: %v", err)
		return 1
	}

	testDSN = dsn

	return m.Run()
}

// DSN returns the DSN of the test database and skips the test when there is none.
func DSN(t testing.TB) string {
	t.Helper()

	if testDSN == "" {
		t.Skip("no test database, integration test skipped")
	}

	return testDSN
}

// Migrate applies all embedded migrations to the database behind dsn.
func Migrate(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)

	if err = goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err = goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// CleanUp empties all circulation tables.
func CleanUp(t testing.TB) {
	t.Helper()

	db, err := sql.Open("postgres", DSN(t))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	_, err = db.Exec("TRUNCATE trn_quantities, transactions, loans, librarians, loaners, books")
	if err != nil {
		t.Fatalf("failed to clean up tables: %v", err)
	}
}
