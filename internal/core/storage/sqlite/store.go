// Package sqlite stores project documents in a single SQLite table, encoded
// as CBOR.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/salinityengine/salinity/internal/core/document"
	"github.com/salinityengine/salinity/internal/core/observability/log"
	"github.com/salinityengine/salinity/internal/core/storage/interfaces"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	body        BLOB NOT NULL,
	updated_at  INTEGER NOT NULL
);
`

// Store implements interfaces.Storage on SQLite.
type Store struct {
	db  *sql.DB
	log log.Log
	now func() time.Time
}

var _ interfaces.Storage = (*Store)(nil)

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string, logger log.Log) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared between calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, log: logger, now: time.Now}, nil
}

func (s *Store) Put(ctx context.Context, key string, doc document.Document) (bool, error) {
	if key == "" {
		return false, errors.New("storage: empty key")
	}
	fp, err := document.Fingerprint(doc)
	if err != nil {
		return false, err
	}
	sum := formatFingerprint(fp)

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT fingerprint FROM documents WHERE key = ?`, key).Scan(&current)
	switch {
	case err == nil && current == sum:
		s.log.Debug("document unchanged", log.String("key", key), log.String("fingerprint", sum))
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	body, err := document.Marshal(doc, document.FormatCBOR)
	if err != nil {
		return false, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (key, name, fingerprint, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			fingerprint = excluded.fingerprint,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		key, doc.Name, sum, body, s.now().UnixNano())
	if err != nil {
		return false, fmt.Errorf("put %s: %w", key, err)
	}
	s.log.Info("document stored", log.String("key", key), log.Int("bytes", len(body)))
	return true, nil
}

func (s *Store) Get(ctx context.Context, key string) (document.Document, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, fmt.Errorf("%w: %s", interfaces.ErrNotFound, key)
	}
	if err != nil {
		return document.Document{}, err
	}
	return document.Unmarshal(body, document.FormatCBOR)
}

func (s *Store) Stat(ctx context.Context, key string) (interfaces.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, name, fingerprint, length(body), updated_at FROM documents WHERE key = ?`, key)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return interfaces.Entry{}, fmt.Errorf("%w: %s", interfaces.ErrNotFound, key)
	}
	return e, err
}

func (s *Store) List(ctx context.Context) ([]interfaces.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, name, fingerprint, length(body), updated_at FROM documents ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []interfaces.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", interfaces.ErrNotFound, key)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (interfaces.Entry, error) {
	var (
		e       interfaces.Entry
		sum     string
		updated int64
	)
	if err := row.Scan(&e.Key, &e.Name, &sum, &e.Size, &updated); err != nil {
		return interfaces.Entry{}, err
	}
	if _, err := fmt.Sscanf(sum, "%016x", &e.Fingerprint); err != nil {
		return interfaces.Entry{}, fmt.Errorf("bad fingerprint %q: %w", sum, err)
	}
	e.UpdatedAt = time.Unix(0, updated)
	return e, nil
}

// Fingerprints are stored as hex text since SQLite integers are signed.
func formatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}
