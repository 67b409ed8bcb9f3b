package postgres

import (
	"context"
	"encoding/json"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/repository"
)

type invoiceRepository struct {
	db DB
}

func NewInvoiceRepository(db DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) List(ctx context.Context, filter repository.InvoiceFilter) ([]domain.Invoice, error) {
	const query = `
	SELECT i.id, i.user_id, i.client_id, COALESCE(c.name, ''), i.items, i.total, i.created_at
	FROM invoices i
	LEFT JOIN clients c ON c.id = i.client_id
	WHERE i.user_id = $1
	ORDER BY i.created_at DESC
	LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, filter.UserID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		var (
			inv   domain.Invoice
			items []byte
		)
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.ClientID, &inv.ClientName, &items, &inv.Total, &inv.CreatedAt); err != nil {
			return nil, err
		}
		if len(items) > 0 {
			_ = json.Unmarshal(items, &inv.Items)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
