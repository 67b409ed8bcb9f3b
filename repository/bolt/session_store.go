package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/fastygo/bizdesk/domain"
)

// SessionStore keeps the current session in a local BoltDB file so it
// survives restarts of the client.
type SessionStore struct {
	db     *bbolt.DB
	bucket []byte
	key    []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path, bucket, storageKey string) (*SessionStore, error) {
	if bucket == "" {
		bucket = "auth"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{
		db:     db,
		bucket: []byte(bucket),
		key:    []byte(storageKey),
	}, nil
}

func (s *SessionStore) Load(_ context.Context) (*domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, bbolt.ErrDatabaseNotOpen
	}

	var payload []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get(s.key); v != nil {
			payload = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	if session == nil || session.AccessToken == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put(s.key, payload)
	})
}

func (s *SessionStore) Delete(_ context.Context) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(s.key)
	})
}

// Ping reports whether the database file is still usable.
func (s *SessionStore) Ping(_ context.Context) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return bbolt.ErrBucketNotFound
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
