package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var (
	// ErrStoreMissing means the database file does not exist.
	ErrStoreMissing = errors.New("database not found")
	// ErrSchemaMissing means the database exists but lacks the tables,
	// or is not a readable SQLite file.
	ErrSchemaMissing = errors.New("database schema missing or malformed")
)

// IsSetupError reports whether err means the store must be bootstrapped
// before ingestion can run.
func IsSetupError(err error) bool {
	return errors.Is(err, ErrStoreMissing) || errors.Is(err, ErrSchemaMissing)
}

// SQLiteStore holds recovered issues and comments in a local SQLite
// database. It allows a single connection: all writes come from one
// sequential ingestion loop.
type SQLiteStore struct {
	db *sqlx.DB
}

// Bootstrap opens (or creates) a SQLite database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func Bootstrap(dbPath string) (*SQLiteStore, error) {
	s, err := connect(dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Open opens an existing, bootstrapped database. It never creates the
// file or its tables; see Bootstrap.
func Open(dbPath string) (*SQLiteStore, error) {
	if !isMemory(dbPath) {
		info, err := os.Stat(dbPath)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreMissing, dbPath)
		}
		if err != nil {
			return nil, fmt.Errorf("checking database %s: %w", dbPath, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrSchemaMissing, dbPath)
		}
	}

	s, err := connect(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}

	if err := s.verifySchema(); err != nil {
		s.db.Close()
		return nil, err
	}

	return s, nil
}

func connect(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises
	// batches with every other statement.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite db %s: %w", dbPath, err)
	}

	return &SQLiteStore{db: db}, nil
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// verifySchema confirms every required table is present.
func (s *SQLiteStore) verifySchema() error {
	query, args, err := sqlx.In(
		"SELECT name FROM sqlite_master WHERE type='table' AND name IN (?)",
		requiredTables,
	)
	if err != nil {
		return fmt.Errorf("building schema query: %w", err)
	}

	var present []string
	if err := s.db.Select(&present, query, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}

	found := make(map[string]bool, len(present))
	for _, name := range present {
		found[name] = true
	}
	var missing []string
	for _, name := range requiredTables {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing tables %s", ErrSchemaMissing, strings.Join(missing, ", "))
	}

	return nil
}

// Begin starts a batch. All reconciler reads and writes for the batch
// go through it; nothing else may use the store until it is committed
// or rolled back.
func (s *SQLiteStore) Begin(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
