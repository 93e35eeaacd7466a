package storage

import (
	"context"
	"errors"

	"ticket-marketplace/internal/models"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrDuplicateTransaction is returned when a payment insert collides with
	// the ledger's unique transaction id key. The key is the only true
	// serialization point for duplicate completion callbacks.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
)

// ApplyResult reports which of the reconciliation writes actually changed a
// row. The ledger insert itself always succeeded when a result is returned.
type ApplyResult struct {
	InventoryApplied bool
	BookingPaid      bool
}

type Store interface {
	// User operations
	SaveUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	TouchUserLogin(email string) error
	ListUsers() ([]*models.User, error)
	UpdateUserRole(id string, role models.UserRole) error
	SetUserFraud(id string, fraud bool) error

	// Ticket operations
	SaveTicket(ticket *models.Ticket) error
	GetTicket(id string) (*models.Ticket, error)
	ListTickets() ([]*models.Ticket, error)
	ListTicketsByStatus(status models.TicketStatus) ([]*models.Ticket, error)
	ListTicketsByVendor(email string) ([]*models.Ticket, error)
	UpdateTicketStatus(id string, status models.TicketStatus) error
	SetTicketAdvertise(id string, advertise bool) error
	CountAdvertisedTickets() (int, error)

	// Booking operations
	SaveBooking(booking *models.Booking) error
	GetBooking(id string) (*models.Booking, error)
	ListBookedTickets(customerEmail string) ([]*models.BookedTicket, error)
	ListBookingRequests(vendorEmail string) ([]*models.BookingRequest, error)
	UpdateBookingStatus(id string, status string) error

	// Payment ledger operations
	GetPaymentByTransactionID(transactionID string) (*models.Payment, error)

	// ApplyPayment performs the three reconciliation writes in a single
	// transaction: ledger insert, guarded inventory decrement, booking
	// status flip. A decrement whose quantity condition fails does not
	// abort the transaction; it is reported through ApplyResult.
	ApplyPayment(ctx context.Context, payment *models.Payment) (*ApplyResult, error)
}
