package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/armory/internal/errors"
)

//go:embed schema.sql
var schemaSQL string

// DefaultSchema returns the embedded schema script. Executing it through
// Build drops and recreates every collection.
func DefaultSchema() string {
	return schemaSQL
}

// Schema version tracking:
// 0 - Fresh file, no collections
// 1 - Default schema built
const currentSchemaVersion = 1

// Store is the SQLite record store.
// Uses WAL mode for concurrent read access.
type Store struct {
	queries
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// A fresh file gets the default schema. An existing file keeps its data;
// use Build to start over.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapStore(err, "open database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.WrapStore(err, "connect to database")
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, errors.WrapStore(err, "apply pragmas")
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, errors.WrapStore(err, "run migrations")
	}

	return NewFromDB(db), nil
}

// NewFromDB wraps an already configured connection. No pragmas or
// migrations are applied.
func NewFromDB(db *sql.DB) *Store {
	return &Store{queries: newQueries(db), db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Build executes a schema script against the store. The default script
// drops every collection first, so Build is how the store is reset.
func (s *Store) Build(ctx context.Context, schema string) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.WrapStore(err, "build schema")
	}
	return nil
}

// Atomic runs fn inside a transaction. The Adapter passed to fn is bound to
// the transaction; fn must not use the Store itself, whose single
// connection is held until fn returns.
//
// fn returning an error rolls back every write made through the Adapter.
func (s *Store) Atomic(ctx context.Context, fn func(Adapter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapStore(err, "begin transaction")
	}

	if err := fn(newQueries(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.WrapStore(errors.WithDetailf(err, "rollback: %v", rbErr), "atomic")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapStore(err, "commit transaction")
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrapf(err, "execute %q", pragma)
		}
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrap(err, "get user_version")
	}

	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return errors.Wrap(err, "set user_version")
	}

	return nil
}

// migrateToV1 builds the default schema on a file that has none.
func migrateToV1(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return errors.Wrap(err, "migrate to v1")
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return errors.Wrapf(err, "query %s", name)
	}
	if value != expected {
		return errors.Newf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
