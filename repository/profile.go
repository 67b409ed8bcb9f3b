package repository

import (
	"context"

	"github.com/fastygo/bizdesk/domain"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Insert(ctx context.Context, profile *domain.Profile) error
}
