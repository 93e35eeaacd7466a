package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticket-marketplace/internal/auth"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/storage"
	"ticket-marketplace/internal/utils"
)

var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrAdvertiseCapReached = errors.New("limit reached! you cannot advertise more than 6 tickets")
	ErrAdvertiseBusy       = errors.New("advertise slots are being updated, try again")
)

// SlotLock is the single-writer lock held across the advertise admission
// check. The redis wrapper implements it; tests use NoopSlotLock.
type SlotLock interface {
	AcquireSlot(name string) (bool, error)
	ReleaseSlot(name string) error
}

// NoopSlotLock always grants the lock. Used where the read-then-write race
// window is acceptable (tests, single-instance dev).
type NoopSlotLock struct{}

func (NoopSlotLock) AcquireSlot(string) (bool, error) { return true, nil }
func (NoopSlotLock) ReleaseSlot(string) error         { return nil }

const advertiseSlotName = "advertise"

type CatalogService struct {
	store storage.Store
	lock  SlotLock
	log   *logger.Logger
}

func NewCatalogService(store storage.Store, lock SlotLock, log *logger.Logger) *CatalogService {
	return &CatalogService{store: store, lock: lock, log: log}
}

// Submit creates a pending listing for a vendor in good standing.
func (s *CatalogService) Submit(ctx context.Context, identity auth.Identity, req *models.SubmitTicketRequest) (*models.Ticket, error) {
	user, err := s.store.GetUserByEmail(identity.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, auth.ErrForbidden
		}
		return nil, fmt.Errorf("failed to resolve acting user: %w", err)
	}
	if err := auth.IsVendor(user); err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		ID:        utils.GenerateTicketID(),
		Title:     req.Title,
		Image:     req.Image,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Vendor:    models.Vendor{Email: user.Email, Name: user.Name},
		Status:    models.TicketPending,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveTicket(ticket); err != nil {
		return nil, fmt.Errorf("failed to save ticket: %w", err)
	}

	s.log.Info("CATALOG", fmt.Sprintf("Ticket %s submitted by %s", ticket.ID, user.Email))
	return ticket, nil
}

func (s *CatalogService) ListApproved(ctx context.Context) ([]*models.Ticket, error) {
	return s.store.ListTicketsByStatus(models.TicketApproved)
}

func (s *CatalogService) List(ctx context.Context, identity auth.Identity) ([]*models.Ticket, error) {
	if _, err := actingAdmin(s.store, identity); err != nil {
		return nil, err
	}
	return s.store.ListTickets()
}

func (s *CatalogService) ListByVendor(ctx context.Context, identity auth.Identity) ([]*models.Ticket, error) {
	return s.store.ListTicketsByVendor(identity.Email)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.store.GetTicket(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// Moderate sets a listing's approval status.
func (s *CatalogService) Moderate(ctx context.Context, identity auth.Identity, id string, status models.TicketStatus) error {
	if _, err := actingAdmin(s.store, identity); err != nil {
		return err
	}

	if err := s.store.UpdateTicketStatus(id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTicketNotFound
		}
		return err
	}

	s.log.Info("CATALOG", fmt.Sprintf("Ticket %s moderated to %s by %s", id, status, identity.Email))
	return nil
}

// SetAdvertise grants or clears a ticket's advertise slot. Granting runs
// the admission check under the slot lock so concurrent grants cannot both
// observe a free slot; clearing is uncapped.
func (s *CatalogService) SetAdvertise(ctx context.Context, identity auth.Identity, id string, advertise bool) error {
	if _, err := actingAdmin(s.store, identity); err != nil {
		return err
	}

	if advertise {
		ok, err := s.lock.AcquireSlot(advertiseSlotName)
		if err != nil {
			return fmt.Errorf("failed to acquire advertise lock: %w", err)
		}
		if !ok {
			return ErrAdvertiseBusy
		}
		defer s.lock.ReleaseSlot(advertiseSlotName)

		count, err := s.store.CountAdvertisedTickets()
		if err != nil {
			return fmt.Errorf("failed to count advertised tickets: %w", err)
		}
		if count >= models.MaxAdvertisedTickets {
			s.log.Warn("CATALOG", fmt.Sprintf("Advertise cap reached (%d), rejecting ticket %s", count, id))
			return ErrAdvertiseCapReached
		}
	}

	if err := s.store.SetTicketAdvertise(id, advertise); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTicketNotFound
		}
		return err
	}

	s.log.Info("CATALOG", fmt.Sprintf("Ticket %s advertise=%t set by %s", id, advertise, identity.Email))
	return nil
}
