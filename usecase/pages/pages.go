package pages

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/domain"
	"github.com/fastygo/bizdesk/repository"
)

// BookingScope selects which bookings the bookings page lists.
type BookingScope string

const (
	ScopeAll      BookingScope = "all"
	ScopeToday    BookingScope = "today"
	ScopeUpcoming BookingScope = "upcoming"
)

// ParseBookingScope accepts the bookings page filter; empty means all.
func ParseBookingScope(raw string) (BookingScope, error) {
	switch BookingScope(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeToday:
		return ScopeToday, nil
	case ScopeUpcoming:
		return ScopeUpcoming, nil
	default:
		return "", domain.NewError(domain.ErrCodeInvalid, "filter must be one of all, today, upcoming")
	}
}

const pageSize = 100

type UseCase struct {
	profiles repository.ProfileRepository
	clients  repository.ClientRepository
	bookings repository.BookingRepository
	invoices repository.InvoiceRepository
	logger   *zap.Logger
	now      func() time.Time
}

// New builds the page use cases. With nil repositories every page answers
// domain.ErrStoreDisabled.
func New(
	profiles repository.ProfileRepository,
	clients repository.ClientRepository,
	bookings repository.BookingRepository,
	invoices repository.InvoiceRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		profiles: profiles,
		clients:  clients,
		bookings: bookings,
		invoices: invoices,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *UseCase) enabled() bool {
	return uc != nil && uc.clients != nil && uc.bookings != nil && uc.invoices != nil
}

func (uc *UseCase) today() time.Time {
	now := uc.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Home is the landing page summary.
type Home struct {
	Profile       *domain.Profile  `json:"profile,omitempty"`
	TodayBookings []domain.Booking `json:"today_bookings"`
	TodayRevenue  float64          `json:"today_revenue"`
	ClientCount   int              `json:"client_count"`
}

func (uc *UseCase) Home(ctx context.Context, userID string) (*Home, error) {
	if !uc.enabled() {
		return nil, domain.ErrStoreDisabled
	}

	home := &Home{}
	if uc.profiles != nil {
		profile, err := uc.profiles.GetByID(ctx, userID)
		switch {
		case err == nil:
			home.Profile = profile
		case errors.Is(err, domain.ErrProfileNotFound):
			uc.logger.Debug("no profile for user", zap.String("user_id", userID))
		default:
			return nil, err
		}
	}

	today, err := uc.Bookings(ctx, userID, ScopeToday)
	if err != nil {
		return nil, err
	}
	home.TodayBookings = today
	for i := range today {
		if today[i].Earns() {
			home.TodayRevenue += today[i].Price
		}
	}

	count, err := uc.clients.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	home.ClientCount = count
	return home, nil
}

// Bookings lists the user's bookings in scope, earliest first. Upcoming
// means from today on, excluding finished and cancelled ones.
func (uc *UseCase) Bookings(ctx context.Context, userID string, scope BookingScope) ([]domain.Booking, error) {
	if !uc.enabled() {
		return nil, domain.ErrStoreDisabled
	}

	filter := repository.BookingFilter{UserID: userID}
	today := uc.today()
	switch scope {
	case ScopeToday:
		filter.From, filter.To = &today, &today
	case ScopeUpcoming:
		filter.From = &today
	}

	bookings, err := uc.listBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	if scope != ScopeUpcoming {
		return bookings, nil
	}

	upcoming := bookings[:0]
	for _, b := range bookings {
		if b.Status == domain.BookingPending || b.Status == domain.BookingConfirmed {
			upcoming = append(upcoming, b)
		}
	}
	return upcoming, nil
}

func (uc *UseCase) listBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	bookings := make([]domain.Booking, 0)
	filter.Limit = pageSize
	for {
		batch, err := uc.bookings.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, batch...)
		if len(batch) < pageSize {
			return bookings, nil
		}
		filter.Offset += len(batch)
	}
}

// ClientPage is one page of the client list.
type ClientPage struct {
	Clients []domain.Client `json:"clients"`
	Total   int             `json:"total"`
}

// Clients searches the user's clients by name or phone.
func (uc *UseCase) Clients(ctx context.Context, userID, search string, limit, offset int) (*ClientPage, error) {
	if !uc.enabled() {
		return nil, domain.ErrStoreDisabled
	}

	clients, err := uc.clients.List(ctx, repository.ClientFilter{
		UserID: userID,
		Search: strings.TrimSpace(search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	total, err := uc.clients.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	return &ClientPage{Clients: clients, Total: total}, nil
}

func (uc *UseCase) Invoices(ctx context.Context, userID string, limit, offset int) ([]domain.Invoice, error) {
	if !uc.enabled() {
		return nil, domain.ErrStoreDisabled
	}
	invoices, err := uc.invoices.List(ctx, repository.InvoiceFilter{UserID: userID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	return invoices, nil
}

// ServiceStat aggregates earning bookings of one service.
type ServiceStat struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// ClientStat aggregates earning bookings of one client.
type ClientStat struct {
	Name   string  `json:"name"`
	Visits int     `json:"visits"`
	Spent  float64 `json:"spent"`
}

// Analytics is computed from the user's bookings, clients and invoices.
type Analytics struct {
	TotalRevenue        float64       `json:"total_revenue"`
	TotalClients        int           `json:"total_clients"`
	TotalBookings       int           `json:"total_bookings"`
	AverageBookingValue float64       `json:"average_booking_value"`
	InvoicedTotal       float64       `json:"invoiced_total"`
	MonthlyGrowth       float64       `json:"monthly_growth"`
	TopServices         []ServiceStat `json:"top_services"`
	TopClients          []ClientStat  `json:"top_clients"`
	WeeklyBookings      [7]int        `json:"weekly_bookings"`
}

const (
	topServices = 4
	topClients  = 3
)

func (uc *UseCase) Analytics(ctx context.Context, userID string) (*Analytics, error) {
	if !uc.enabled() {
		return nil, domain.ErrStoreDisabled
	}

	bookings, err := uc.listBookings(ctx, repository.BookingFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	clients, err := uc.clients.Count(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &Analytics{
		TotalClients:  clients,
		TotalBookings: len(bookings),
		TopServices:   []ServiceStat{},
		TopClients:    []ClientStat{},
	}

	offset := 0
	for {
		batch, err := uc.invoices.List(ctx, repository.InvoiceFilter{UserID: userID, Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, inv := range batch {
			a.InvoicedTotal += inv.Total
		}
		if len(batch) < pageSize {
			break
		}
		offset += len(batch)
	}

	today := uc.today()
	weekStart := today.AddDate(0, 0, -6)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	services := map[string]*ServiceStat{}
	byClient := map[string]*ClientStat{}
	var earning int
	var thisMonth, lastMonth float64

	for i := range bookings {
		b := &bookings[i]
		day := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), 0, 0, 0, 0, today.Location())
		if !day.Before(weekStart) && !day.After(today) {
			a.WeeklyBookings[int(day.Sub(weekStart).Hours()/24+0.5)]++
		}
		if !b.Earns() {
			continue
		}

		earning++
		a.TotalRevenue += b.Price
		switch {
		case !day.Before(monthStart):
			thisMonth += b.Price
		case !day.Before(prevMonthStart):
			lastMonth += b.Price
		}

		svc := services[b.Service]
		if svc == nil {
			svc = &ServiceStat{Name: b.Service}
			services[b.Service] = svc
		}
		svc.Count++
		svc.Revenue += b.Price

		name := b.ClientName
		if name == "" {
			name = b.ClientID
		}
		cl := byClient[name]
		if cl == nil {
			cl = &ClientStat{Name: name}
			byClient[name] = cl
		}
		cl.Visits++
		cl.Spent += b.Price
	}

	if earning > 0 {
		a.AverageBookingValue = a.TotalRevenue / float64(earning)
	}
	if lastMonth > 0 {
		a.MonthlyGrowth = (thisMonth - lastMonth) / lastMonth * 100
	}

	for _, s := range services {
		a.TopServices = append(a.TopServices, *s)
	}
	sort.Slice(a.TopServices, func(i, j int) bool {
		if a.TopServices[i].Revenue != a.TopServices[j].Revenue {
			return a.TopServices[i].Revenue > a.TopServices[j].Revenue
		}
		return a.TopServices[i].Name < a.TopServices[j].Name
	})
	if len(a.TopServices) > topServices {
		a.TopServices = a.TopServices[:topServices]
	}

	for _, c := range byClient {
		a.TopClients = append(a.TopClients, *c)
	}
	sort.Slice(a.TopClients, func(i, j int) bool {
		if a.TopClients[i].Spent != a.TopClients[j].Spent {
			return a.TopClients[i].Spent > a.TopClients[j].Spent
		}
		return a.TopClients[i].Name < a.TopClients[j].Name
	})
	if len(a.TopClients) > topClients {
		a.TopClients = a.TopClients[:topClients]
	}

	return a, nil
}
