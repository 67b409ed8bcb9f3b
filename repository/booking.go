package repository

import (
	"context"
	"time"

	"github.com/fastygo/bizdesk/domain"
)

type BookingFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type BookingRepository interface {
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
}
