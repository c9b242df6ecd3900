// Package session persists per-visitor answer data between requests.
//
// A session holds the answers of every form the visitor has touched, keyed by form
// id then page id. A form whose entry is present but null has been submitted.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
)

// Data is the persisted state of one session
type Data struct {
	// Answers maps form id to page id to the stored answer payload. A nil page map
	// is the submitted marker.
	Answers map[string]map[string]map[string]string `json:"answers"`
}

// NewData returns empty session data
func NewData() *Data {
	return &Data{Answers: make(map[string]map[string]map[string]string)}
}

// Store persists session data by session id. Implementations are safe for
// concurrent use; concurrent saves of one session are last-write-wins.
type Store interface {
	// Load returns the data for id, or empty data when the session does not exist
	Load(ctx context.Context, id string) (*Data, error)

	// Save replaces the data for id
	Save(ctx context.Context, id string, data *Data) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error

	Close() error
}

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Options selects and configures a session backend
type Options struct {
	Backend string
	// DSN is a redis URL for redis, or a file path for sqlite and bolt
	DSN string
	TTL time.Duration
}

// Open creates the store for the configured backend
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendRedis:
		return OpenRedisStore(ctx, opts.DSN, opts.TTL)
	case BackendSQLite:
		return OpenSQLiteStore(ctx, opts.DSN)
	case BackendBolt:
		return OpenBoltStore(opts.DSN)
	default:
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("unknown session backend %q", opts.Backend))
	}
}

// NewID returns a fresh random session id
func NewID() string {
	return uuid.NewString()
}

func encode(id string, data *Data) ([]byte, error) {
	if data == nil {
		data = NewData()
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeSessionSave, "failed to encode session "+id, err)
	}
	return b, nil
}

func decode(id string, b []byte) (*Data, error) {
	data := NewData()
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, data); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeSessionCorrupt, "failed to decode session "+id, err).
			WithSuggestion("Delete the session to start the visitor afresh")
	}
	if data.Answers == nil {
		data.Answers = make(map[string]map[string]map[string]string)
	}
	return data, nil
}
