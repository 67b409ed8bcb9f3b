package domain

import "time"

// BookingStatus is the lifecycle state of an appointment.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Client is a customer of the business.
type Client struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Booking is a scheduled service for a client.
type Booking struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	ClientID   string        `json:"client_id"`
	ClientName string        `json:"client_name,omitempty"`
	Service    string        `json:"service"`
	Date       time.Time     `json:"date"`
	Time       string        `json:"time"`
	Price      float64       `json:"price"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Earns reports whether the booking counts toward revenue.
func (b *Booking) Earns() bool {
	return b != nil && (b.Status == BookingConfirmed || b.Status == BookingCompleted)
}

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Invoice is a bill issued to a client.
type Invoice struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	ClientID   string        `json:"client_id"`
	ClientName string        `json:"client_name,omitempty"`
	Items      []InvoiceItem `json:"items"`
	Total      float64       `json:"total"`
	CreatedAt  time.Time     `json:"created_at"`
}
