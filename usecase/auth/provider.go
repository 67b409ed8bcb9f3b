package auth

import (
	"context"

	"github.com/fastygo/bizdesk/domain"
)

// Provider is the session provider as the controller sees it.
type Provider interface {
	GetSession(ctx context.Context) (domain.SessionSnapshot, error)
	SignUp(ctx context.Context, email, password string) (*domain.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	Subscribe() (<-chan domain.AuthEvent, func())
}

// ProfileWriter stores the business profile created after sign-up.
type ProfileWriter interface {
	InsertProfile(ctx context.Context, profile *domain.Profile) error
}

// ProfileWriterFunc adapts a function, such as a repository's Insert, to
// ProfileWriter.
type ProfileWriterFunc func(ctx context.Context, profile *domain.Profile) error

func (f ProfileWriterFunc) InsertProfile(ctx context.Context, profile *domain.Profile) error {
	return f(ctx, profile)
}
