package postgres

import (
	"context"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/repository"
)

type clientRepository struct {
	db DB
}

func NewClientRepository(db DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) List(ctx context.Context, filter repository.ClientFilter) ([]domain.Client, error) {
	const query = `
	SELECT id, user_id, name, phone, COALESCE(email, ''), created_at
	FROM clients
	WHERE user_id = $1
	  AND ($2 = '' OR name ILIKE $2 ESCAPE '\' OR phone LIKE $2 ESCAPE '\')
	ORDER BY name ASC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, filter.UserID, containsPattern(filter.Search), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientRepository) Count(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM clients WHERE user_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
