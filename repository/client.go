package repository

import (
	"context"

	"github.com/fastygo/bizdesk/domain"
)

type ClientFilter struct {
	UserID string
	Search string
	Limit  int
	Offset int
}

type ClientRepository interface {
	List(ctx context.Context, filter ClientFilter) ([]domain.Client, error)
	Count(ctx context.Context, userID string) (int, error)
}
