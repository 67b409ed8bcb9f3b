package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestProfileRepository_Insert(t *testing.T) {
	mock := newMock(t)
	repo := NewProfileRepository(mock)
	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO profiles").
		WithArgs("user-1", "owner@example.com", "Ada Styles", "Hair Stylist/Barber", nil, "ABCD1234").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	profile := &domain.Profile{
		ID:    "user-1",
		Email: "owner@example.com",
		ProfileFields: domain.ProfileFields{
			BusinessName: "Ada Styles",
			BusinessType: "Hair Stylist/Barber",
			ReferralCode: "ABCD1234",
		},
	}
	require.NoError(t, repo.Insert(context.Background(), profile))
	assert.Equal(t, created, profile.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_InsertRejectsMissingID(t *testing.T) {
	repo := NewProfileRepository(newMock(t))
	err := repo.Insert(context.Background(), &domain.Profile{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestProfileRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProfileRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	profile, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestClientRepository_ListAndCount(t *testing.T) {
	mock := newMock(t)
	repo := NewClientRepository(mock)
	created := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM clients").
		WithArgs("user-1", "%ada%", 100, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "phone", "email", "created_at"}).
			AddRow("c-1", "user-1", "Adaora Okafor", "+2348012345678", "", created))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(45))

	clients, err := repo.List(context.Background(), repository.ClientFilter{UserID: "user-1", Search: "ada"})
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Adaora Okafor", clients[0].Name)

	count, err := repo.Count(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 45, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "", containsPattern(""))
	assert.Equal(t, "%ada%", containsPattern("ada"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\d%`, containsPattern(`c:\d`))
}

func TestClientRepository_SearchWildcardsAreLiteral(t *testing.T) {
	mock := newMock(t)
	repo := NewClientRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM clients").
		WithArgs("user-1", `%\%%`, 100, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "phone", "email", "created_at"}))

	clients, err := repo.List(context.Background(), repository.ClientFilter{UserID: "user-1", Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, clients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM bookings b").
		WithArgs("user-1", day, nil, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "client_id", "client_name", "service", "date", "time", "price", "status", "created_at",
		}).AddRow("b-1", "user-1", "c-1", "Adaora Okafor", "Hair Braiding", day, "10:00 AM", 8000.0, "confirmed", day))

	bookings, err := repo.List(context.Background(), repository.BookingFilter{UserID: "user-1", From: &day, Limit: 20})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, domain.BookingConfirmed, bookings[0].Status)
	assert.Equal(t, 8000.0, bookings[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewInvoiceRepository(mock)
	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM invoices i").
		WithArgs("user-1", 100, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "client_id", "client_name", "items", "total", "created_at"}).
			AddRow("i-1", "user-1", "c-1", "Adaora Okafor",
				[]byte(`[{"name":"Hair Braiding","quantity":1,"price":8000},{"name":"Hair Treatment","quantity":1,"price":2000}]`),
				10000.0, created))

	invoices, err := repo.List(context.Background(), repository.InvoiceFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Len(t, invoices[0].Items, 2)
	assert.Equal(t, 10000.0, invoices[0].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
