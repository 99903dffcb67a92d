// Package store persists a finished symbol table to SQLite so it can be
// inspected without re-running the analysis.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for exported symbol tables.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS modules (
  id              INTEGER PRIMARY KEY,
  name            TEXT NOT NULL UNIQUE,
  path            TEXT,
  is_package      BOOLEAN DEFAULT FALSE,
  ordinal         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
  id              INTEGER PRIMARY KEY,
  module_id       INTEGER NOT NULL REFERENCES modules(id),
  ordinal         INTEGER NOT NULL,
  name            TEXT NOT NULL UNIQUE,
  fullname        TEXT NOT NULL,
  ref_fullname    TEXT NOT NULL,
  domain          TEXT NOT NULL,
  role            TEXT NOT NULL,
  shorthand       TEXT,
  qualified       TEXT,
  origin          TEXT,
  decl_kind       TEXT,
  decl_path       TEXT
);

CREATE TABLE IF NOT EXISTS symbol_attrs (
  id              INTEGER PRIMARY KEY,
  symbol_id       INTEGER NOT NULL REFERENCES symbols(id),
  ordinal         INTEGER NOT NULL,
  fullname        TEXT NOT NULL,
  shorthand       TEXT,
  qualified       TEXT
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT
);

CREATE INDEX IF NOT EXISTS idx_symbols_module ON symbols(module_id);
CREATE INDEX IF NOT EXISTS idx_symbols_role ON symbols(role);
CREATE INDEX IF NOT EXISTS idx_symbols_fullname ON symbols(fullname);
CREATE INDEX IF NOT EXISTS idx_symbol_attrs_symbol ON symbol_attrs(symbol_id);
`
