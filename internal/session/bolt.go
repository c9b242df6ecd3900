package session

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
)

var sessionsBucket = []byte("sessions")

// BoltStore keeps sessions in the sessions bucket of a bolt database file
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) the bolt file at path
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, apperrors.NewSessionBackendError(BackendBolt, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, apperrors.NewSessionBackendError(BackendBolt, err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(_ context.Context, id string) (*Data, error) {
	var b []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// bolt values are only valid inside the transaction
		if v := tx.Bucket(sessionsBucket).Get([]byte(id)); v != nil {
			b = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeSessionLoad, "failed to load session "+id, err)
	}
	return decode(id, b)
}

func (s *BoltStore) Save(_ context.Context, id string, data *Data) error {
	b, err := encode(id, data)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(id), b)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSessionSave, "failed to save session "+id, err)
	}
	return nil
}

func (s *BoltStore) Delete(_ context.Context, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(id))
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSessionSave, "failed to delete session "+id, err)
	}
	return nil
}

func (s *BoltStore) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(sessionsBucket) == nil {
			return apperrors.New(apperrors.ErrCodeSessionBackend, "sessions bucket missing")
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
