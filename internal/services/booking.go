package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticket-marketplace/internal/auth"
	"ticket-marketplace/internal/kafka"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/storage"
	"ticket-marketplace/internal/utils"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingService struct {
	store    storage.Store
	producer *kafka.Producer
	log      *logger.Logger
}

func NewBookingService(store storage.Store, producer *kafka.Producer, log *logger.Logger) *BookingService {
	return &BookingService{store: store, producer: producer, log: log}
}

// Book creates a pending booking ahead of payment. The customer snapshot
// comes from the verified identity and the vendor snapshot from the listing.
func (s *BookingService) Book(ctx context.Context, identity auth.Identity, req *models.BookTicketRequest) (*models.Booking, error) {
	ticket, err := s.store.GetTicket(req.TicketID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}

	booking := &models.Booking{
		ID:       utils.GenerateBookingID(),
		TicketID: ticket.ID,
		Customer: models.Customer{Email: identity.Email, Name: identity.Name},
		Vendor:   ticket.Vendor,
		Quantity: req.Quantity,
		Status:   models.BookingPending,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveBooking(booking); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.log.Info("BOOKING", fmt.Sprintf("Booking %s created by %s for ticket %s", booking.ID, identity.Email, ticket.ID))
	s.publishBookingEvent("booking.created", booking)

	return booking, nil
}

// ListBooked returns the customer's bookings joined with listing details.
func (s *BookingService) ListBooked(ctx context.Context, identity auth.Identity) ([]*models.BookedTicket, error) {
	return s.store.ListBookedTickets(identity.Email)
}

// ListRequests returns the booking requests on the vendor's listings.
func (s *BookingService) ListRequests(ctx context.Context, identity auth.Identity) ([]*models.BookingRequest, error) {
	return s.store.ListBookingRequests(identity.Email)
}

// UpdateStatus lets the owning vendor move a booking through the vendor
// vocabulary (accepted, rejected, ...). Reaching "Paid" is reserved for the
// reconciliation flow.
func (s *BookingService) UpdateStatus(ctx context.Context, identity auth.Identity, id, status string) error {
	booking, err := s.store.GetBooking(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("failed to load booking: %w", err)
	}
	if err := auth.VendorOwnsBooking(identity, booking); err != nil {
		return err
	}

	if err := s.store.UpdateBookingStatus(id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}

	s.log.Info("BOOKING", fmt.Sprintf("Booking %s status set to %s by %s", id, status, identity.Email))
	return nil
}

func (s *BookingService) publishBookingEvent(eventType string, booking *models.Booking) {
	event := &models.BookingEvent{
		Type:      eventType,
		BookingID: booking.ID,
		Booking:   booking,
		Timestamp: time.Now(),
	}

	if err := s.producer.PublishBookingEvent(event); err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish %s event for booking %s: %v", eventType, booking.ID, err))
	}
}
