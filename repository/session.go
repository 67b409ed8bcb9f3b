package repository

import (
	"context"

	"github.com/fastygo/bizdesk/domain"
)

// SessionStore persists the client's current session under a single storage key.
// Load returns domain.ErrSessionNotFound when nothing is stored.
type SessionStore interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context) error
}
