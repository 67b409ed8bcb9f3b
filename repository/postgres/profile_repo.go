package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/repository"
)

type profileRepository struct {
	db DB
}

// NewProfileRepository instantiates a Postgres-backed profile repository.
func NewProfileRepository(db DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	const query = `
		SELECT id, email, business_name, business_type, COALESCE(phone, ''), referral_code, created_at
		FROM profiles
		WHERE id = $1
	`
	var p domain.Profile
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.BusinessName, &p.BusinessType, &p.Phone, &p.ReferralCode, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Insert(ctx context.Context, profile *domain.Profile) error {
	if profile == nil || profile.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO profiles (id, email, business_name, business_type, phone, referral_code)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		profile.ID,
		profile.Email,
		profile.BusinessName,
		profile.BusinessType,
		nullString(profile.Phone),
		profile.ReferralCode,
	).Scan(&profile.CreatedAt)
}
