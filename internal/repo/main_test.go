package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/pkordes/mileage-log/migrations"
	"github.com/pkordes/mileage-log/testutil"
)

// TestMain applies the postgres migrations once for the whole test binary
// when TEST_DATABASE_URL is set. Without it the postgres tests skip and the
// memory and sqlite contract tests still run.
func TestMain(m *testing.M) {
	dsn := os.Getenv(testutil.DSNEnv)
	if dsn == "" {
		os.Exit(m.Run())
	}

	db := testutil.MustOpenSQLDB(dsn)
	_, err := migrations.Up(context.Background(), goose.DialectPostgres, db)
	db.Close()
	if err != nil {
		log.Fatalf("TestMain: run migrations: %v", err)
	}

	os.Exit(m.Run())
}
