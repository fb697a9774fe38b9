// Package integrationtest provides Postgres helpers for the ledger integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/store"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/rs/zerolog"
)

// Prepare loads the config found at path and brings the schema up to date.
// It is meant to be called once from TestMain.
func Prepare(path string) (configpkg.Config, error) {
	config, err := configpkg.Load(path)
	if err != nil {
		return config, fmt.Errorf("load config: %w", err)
	}

	if err := dbpkg.Migrate(config.DBSource); err != nil {
		return config, fmt.Errorf("migrate: %w", err)
	}

	return config, nil
}

// Context returns a context carrying a quiet logger built from config.
func Context(config configpkg.Config) context.Context {
	logger := middleware.CreateLogger(config).Level(zerolog.WarnLevel)

	return logger.WithContext(context.Background())
}

// Flush empties the ledger tables without dropping them.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	const query = `TRUNCATE TABLE transactions, accounts RESTART IDENTITY CASCADE`

	if _, err := db.Exec(query); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB opens a connection that is flushed and closed once the test ends.
func SetupDB(t *testing.T, config configpkg.Config) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Errorf("db.Close() failed: %v", err)
		}
	})

	return db
}

// SetupStore returns a SQLStore over a connection prepared by SetupDB.
func SetupStore(t *testing.T, config configpkg.Config) *store.SQLStore {
	t.Helper()

	return store.NewSQLStore(SetupDB(t, config))
}

// SetupTX begins a transaction that is rolled back once the test ends, so
// repository tests never leave rows behind.
func SetupTX(t *testing.T, config configpkg.Config) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Errorf("tx.Rollback() failed: %v", err)
		}

		if err := db.Close(); err != nil {
			t.Errorf("db.Close() failed: %v", err)
		}
	})

	return tx
}
