package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/repository"
)

type sessionStore struct {
	client *redislib.Client
	key    string
	grace  time.Duration
}

// NewSessionStore creates a Redis-backed store for the session saved under storageKey.
// Entries outlive the access token by grace so an expired session can still be refreshed.
func NewSessionStore(client *redislib.Client, storageKey string, grace time.Duration) repository.SessionStore {
	if grace <= 0 {
		grace = 30 * 24 * time.Hour
	}
	return &sessionStore{
		client: client,
		key:    fmt.Sprintf("session:%s", storageKey),
		grace:  grace,
	}
}

func (s *sessionStore) Load(ctx context.Context) (*domain.Session, error) {
	result, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *sessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.AccessToken == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt) + s.grace
	if ttl <= 0 {
		ttl = s.grace
	}
	return s.client.Set(ctx, s.key, payload, ttl).Err()
}

func (s *sessionStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
