package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	sqliteFileName = "mandalart.sqlite"
	objectsDirName = "objects"
)

// ErrNotFound is returned (wrapped) when a row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the local replacement for the hosted tables and bucket.
// All methods are safe for concurrent use.
type Store struct {
	Dir string

	db  *sql.DB
	now func() time.Time
}

// Open creates dir if needed, applies pending schema migrations and opens the
// database.
func Open(ctx context.Context, dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("store: missing data dir")
	}
	s := &Store{Dir: filepath.Clean(dir), now: time.Now}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	if err := migrateSchema(s.sqlitePath()); err != nil {
		return nil, err
	}
	db, err := openSQLite(ctx, s.sqlitePath())
	if err != nil {
		return nil, err
	}
	s.db = db
	return s, nil
}

func (s *Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

// SetClock overrides the time source. Used by tests.
func (s *Store) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

func (s *Store) nowUTC() time.Time {
	return s.now().UTC()
}

// Meta reads a state_meta value. Missing keys return "" and ok=false.
func (s *Store) Meta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state_meta(k, v) VALUES(?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v
	`, key, value)
	return err
}
