package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL
)`

// SQLiteStore keeps sessions in a sessions table of a sqlite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path and ensures the
// schema exists
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, apperrors.NewSessionBackendError(BackendSQLite, err)
	}
	// a single writer avoids "database is locked" under concurrent saves
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, apperrors.NewSessionBackendError(BackendSQLite, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*Data, error) {
	var b []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id = ?`, id).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return NewData(), nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeSessionLoad, "failed to load session "+id, err)
	}
	return decode(id, b)
}

func (s *SQLiteStore) Save(ctx context.Context, id string, data *Data) error {
	b, err := encode(id, data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, b, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSessionSave, "failed to save session "+id, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSessionSave, "failed to delete session "+id, err)
	}
	return nil
}

// DeleteOlderThan removes sessions not saved since the cutoff and returns how many
// were removed
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeSessionSave, "failed to expire sessions", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewSessionBackendError(BackendSQLite, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
