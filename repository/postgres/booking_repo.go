package postgres

import (
	"context"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/repository"
)

type bookingRepository struct {
	db DB
}

// NewBookingRepository returns a Postgres-backed implementation of BookingRepository.
func NewBookingRepository(db DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	const query = `
	SELECT b.id, b.user_id, b.client_id, COALESCE(c.name, ''), b.service, b.date, b.time, b.price, b.status, b.created_at
	FROM bookings b
	LEFT JOIN clients c ON c.id = b.client_id
	WHERE b.user_id = $1
	  AND ($2::date IS NULL OR b.date >= $2::date)
	  AND ($3::date IS NULL OR b.date <= $3::date)
	ORDER BY b.date ASC, b.time ASC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query,
		filter.UserID,
		nullTime(filter.From),
		nullTime(filter.To),
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var (
			b      domain.Booking
			status string
		)
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.ClientID,
			&b.ClientName,
			&b.Service,
			&b.Date,
			&b.Time,
			&b.Price,
			&status,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		b.Status = domain.BookingStatus(status)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
