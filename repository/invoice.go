package repository

import (
	"context"

	"github.com/fastygo/bizdesk/domain"
)

type InvoiceFilter struct {
	UserID string
	Limit  int
	Offset int
}

type InvoiceRepository interface {
	List(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error)
}
