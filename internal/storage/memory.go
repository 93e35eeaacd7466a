package storage

import (
	"context"
	"sync"
	"time"

	"ticket-marketplace/internal/models"
)

// InMemoryStore mirrors the MySQL store's semantics, including the unique
// transaction id constraint and the guarded inventory decrement. Used in
// tests and mock-mode development.
type InMemoryStore struct {
	mutex    sync.RWMutex
	users    map[string]*models.User // keyed by id
	tickets  map[string]*models.Ticket
	bookings map[string]*models.Booking
	payments map[string]*models.Payment // keyed by transaction id
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:    make(map[string]*models.User),
		tickets:  make(map[string]*models.Ticket),
		bookings: make(map[string]*models.Booking),
		payments: make(map[string]*models.Payment),
	}
}

func (s *InMemoryStore) SaveUser(user *models.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *InMemoryStore) GetUserByEmail(email string) (*models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) TouchUserLogin(email string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u.LastLoggedIn = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) ListUsers() ([]*models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var users []*models.User
	for _, u := range s.users {
		cp := *u
		users = append(users, &cp)
	}
	return users, nil
}

func (s *InMemoryStore) UpdateUserRole(id string, role models.UserRole) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	return nil
}

func (s *InMemoryStore) SetUserFraud(id string, fraud bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Fraud = fraud
	return nil
}

func (s *InMemoryStore) SaveTicket(ticket *models.Ticket) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	t := *ticket
	s.tickets[ticket.ID] = &t
	return nil
}

func (s *InMemoryStore) GetTicket(id string) (*models.Ticket, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemoryStore) ListTickets() ([]*models.Ticket, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var tickets []*models.Ticket
	for _, t := range s.tickets {
		cp := *t
		tickets = append(tickets, &cp)
	}
	return tickets, nil
}

func (s *InMemoryStore) ListTicketsByStatus(status models.TicketStatus) ([]*models.Ticket, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var tickets []*models.Ticket
	for _, t := range s.tickets {
		if t.Status == status {
			cp := *t
			tickets = append(tickets, &cp)
		}
	}
	return tickets, nil
}

func (s *InMemoryStore) ListTicketsByVendor(email string) ([]*models.Ticket, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var tickets []*models.Ticket
	for _, t := range s.tickets {
		if t.Vendor.Email == email {
			cp := *t
			tickets = append(tickets, &cp)
		}
	}
	return tickets, nil
}

func (s *InMemoryStore) UpdateTicketStatus(id string, status models.TicketStatus) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	return nil
}

func (s *InMemoryStore) SetTicketAdvertise(id string, advertise bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return ErrNotFound
	}
	t.Advertise = advertise
	return nil
}

func (s *InMemoryStore) CountAdvertisedTickets() (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	count := 0
	for _, t := range s.tickets {
		if t.Advertise {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) SaveBooking(booking *models.Booking) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	b := *booking
	s.bookings[booking.ID] = &b
	return nil
}

func (s *InMemoryStore) GetBooking(id string) (*models.Booking, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *InMemoryStore) ListBookedTickets(customerEmail string) ([]*models.BookedTicket, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var booked []*models.BookedTicket
	for _, b := range s.bookings {
		if b.Customer.Email != customerEmail {
			continue
		}
		t, ok := s.tickets[b.TicketID]
		if !ok {
			continue
		}
		booked = append(booked, &models.BookedTicket{
			BookingID:   b.ID,
			Quantity:    b.Quantity,
			Status:      b.Status,
			CreatedAt:   b.CreatedAt,
			TicketTitle: t.Title,
			TicketImage: t.Image,
			TicketPrice: t.Price,
		})
	}
	return booked, nil
}

func (s *InMemoryStore) ListBookingRequests(vendorEmail string) ([]*models.BookingRequest, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var requests []*models.BookingRequest
	for _, b := range s.bookings {
		if b.Vendor.Email != vendorEmail {
			continue
		}
		t, ok := s.tickets[b.TicketID]
		if !ok {
			continue
		}
		requests = append(requests, &models.BookingRequest{
			BookingID:   b.ID,
			Customer:    b.Customer,
			Vendor:      b.Vendor,
			Status:      b.Status,
			Quantity:    b.Quantity,
			TicketPrice: t.Price,
			TicketTitle: t.Title,
		})
	}
	return requests, nil
}

func (s *InMemoryStore) UpdateBookingStatus(id string, status string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

func (s *InMemoryStore) GetPaymentByTransactionID(transactionID string) (*models.Payment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	p, ok := s.payments[transactionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) ApplyPayment(ctx context.Context, payment *models.Payment) (*ApplyResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.payments[payment.TransactionID]; exists {
		return nil, ErrDuplicateTransaction
	}

	p := *payment
	s.payments[payment.TransactionID] = &p

	result := &ApplyResult{}
	if t, ok := s.tickets[payment.TicketID]; ok && t.Quantity >= payment.Quantity {
		t.Quantity -= payment.Quantity
		result.InventoryApplied = true
	}
	if b, ok := s.bookings[payment.BookingID]; ok {
		b.Status = models.BookingPaid
		result.BookingPaid = true
	}
	return result, nil
}
