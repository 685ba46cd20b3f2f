// Package store persists CRM records in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DefaultDomainID is the row every installation starts with.
const DefaultDomainID = 1

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS domain (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	from_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS contact (
	id INTEGER PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	sort_name TEXT NOT NULL DEFAULT '',
	prefix TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	street_address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	do_not_mail INTEGER NOT NULL DEFAULT 0,
	is_deceased INTEGER NOT NULL DEFAULT 0,
	on_hold INTEGER NOT NULL DEFAULT 0,
	email_greeting TEXT NOT NULL DEFAULT '',
	postal_greeting TEXT NOT NULL DEFAULT '',
	addressee TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS contact_custom (
	contact_id INTEGER NOT NULL REFERENCES contact(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	value TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (contact_id, name)
);

CREATE TABLE IF NOT EXISTS pdf_format (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	paper_size TEXT NOT NULL DEFAULT 'letter',
	orientation TEXT NOT NULL DEFAULT 'portrait',
	metric TEXT NOT NULL DEFAULT 'in',
	margin_top REAL NOT NULL DEFAULT 0.75,
	margin_bottom REAL NOT NULL DEFAULT 0.75,
	margin_left REAL NOT NULL DEFAULT 0.75,
	margin_right REAL NOT NULL DEFAULT 0.75
);

CREATE TABLE IF NOT EXISTS message_template (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	subject TEXT NOT NULL DEFAULT '',
	html TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL DEFAULT '',
	pdf_format_id INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS activity (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_type TEXT NOT NULL,
	source_contact_id INTEGER NOT NULL,
	subject TEXT NOT NULL DEFAULT '',
	details TEXT NOT NULL DEFAULT '',
	activity_date_time TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS activity_target (
	activity_id INTEGER NOT NULL REFERENCES activity(id) ON DELETE CASCADE,
	contact_id INTEGER NOT NULL,
	PRIMARY KEY (activity_id, contact_id)
);
CREATE INDEX IF NOT EXISTS idx_activity_target_contact ON activity_target(contact_id);

INSERT OR IGNORE INTO domain (id, name) VALUES (1, 'Default Domain');
`

// SQLite is a CRM store backed by a single SQLite database file.
type SQLite struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Option configures a store.
type Option func(*SQLite)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLite) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	// Each connection to :memory: is a separate database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	s := &SQLite{db: db, path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	s.logger.Debug("store opened", zap.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *SQLite) Path() string {
	return s.path
}
