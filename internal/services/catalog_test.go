package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/internal/auth"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/services"
	"ticket-marketplace/internal/storage"
)

// deniedSlotLock refuses every acquisition, simulating a competing writer.
type deniedSlotLock struct{}

func (deniedSlotLock) AcquireSlot(string) (bool, error) { return false, nil }
func (deniedSlotLock) ReleaseSlot(string) error         { return nil }

func seedUser(t *testing.T, store *storage.InMemoryStore, email string, role models.UserRole, fraud bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:        "user-" + email,
		Email:     email,
		Name:      "Test User",
		Role:      role,
		Fraud:     fraud,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveUser(user))
	return user
}

func TestSubmitCreatesPendingListing(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewCatalogService(store, services.NoopSlotLock{}, logger.NewLogger())
	seedUser(t, store, "vendor@example.com", models.RoleVendor, false)

	ticket, err := svc.Submit(context.Background(), auth.Identity{Email: "vendor@example.com", Name: "Vendor"}, &models.SubmitTicketRequest{
		Title:    "Concert",
		Price:    500,
		Quantity: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TicketPending, ticket.Status)
	assert.Equal(t, "vendor@example.com", ticket.Vendor.Email)
	assert.NotEmpty(t, ticket.ID)
}

func TestSubmitRejectsNonVendors(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewCatalogService(store, services.NoopSlotLock{}, logger.NewLogger())
	seedUser(t, store, "customer@example.com", models.RoleCustomer, false)

	_, err := svc.Submit(context.Background(), auth.Identity{Email: "customer@example.com"}, &models.SubmitTicketRequest{
		Title:    "Concert",
		Price:    500,
		Quantity: 10,
	})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestSubmitRejectsFraudMarkedVendors(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewCatalogService(store, services.NoopSlotLock{}, logger.NewLogger())
	seedUser(t, store, "vendor@example.com", models.RoleVendor, true)

	_, err := svc.Submit(context.Background(), auth.Identity{Email: "vendor@example.com"}, &models.SubmitTicketRequest{
		Title:    "Concert",
		Price:    500,
		Quantity: 10,
	})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestModerateRequiresAdmin(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewCatalogService(store, services.NoopSlotLock{}, logger.NewLogger())
	seedUser(t, store, "vendor@example.com", models.RoleVendor, false)
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-1", Status: models.TicketPending}))

	err := svc.Moderate(context.Background(), auth.Identity{Email: "vendor@example.com"}, "ticket-1", models.TicketApproved)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	admin := auth.Identity{Email: "admin@example.com"}
	seedUser(t, store, admin.Email, models.RoleAdmin, false)
	require.NoError(t, svc.Moderate(context.Background(), admin, "ticket-1", models.TicketApproved))

	ticket, err := store.GetTicket("ticket-1")
	require.NoError(t, err)
	assert.Equal(t, models.TicketApproved, ticket.Status)
}

func TestAdvertiseCapRejectsSeventhGrant(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewCatalogService(store, services.NoopSlotLock{}, logger.NewLogger())
	admin := auth.Identity{Email: "admin@example.com"}
	seedUser(t, store, admin.Email, models.RoleAdmin, false)

	for i := 0; i < models.MaxAdvertisedTickets; i++ {
		id := fmt.Sprintf("ticket-%d", i)
		require.NoError(t, store.SaveTicket(&models.Ticket{ID: id, Status: models.TicketApproved}))
		require.NoError(t, svc.SetAdvertise(context.Background(), admin, id, true))
	}

	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-overflow", Status: models.TicketApproved}))
	err := svc.SetAdvertise(context.Background(), admin, "ticket-overflow", true)
	assert.ErrorIs(t, err, services.ErrAdvertiseCapReached)

	ticket, err := store.GetTicket("ticket-overflow")
	require.NoError(t, err)
	assert.False(t, ticket.Advertise, "rejected grant must not mutate the ticket")

	count, err := store.CountAdvertisedTickets()
	require.NoError(t, err)
	assert.Equal(t, models.MaxAdvertisedTickets, count)
}

func TestAdvertiseClearIsUncapped(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewCatalogService(store, services.NoopSlotLock{}, logger.NewLogger())
	admin := auth.Identity{Email: "admin@example.com"}
	seedUser(t, store, admin.Email, models.RoleAdmin, false)

	for i := 0; i < models.MaxAdvertisedTickets; i++ {
		id := fmt.Sprintf("ticket-%d", i)
		require.NoError(t, store.SaveTicket(&models.Ticket{ID: id, Advertise: true}))
	}

	// Clearing while the cap is saturated must not consult the cap.
	require.NoError(t, svc.SetAdvertise(context.Background(), admin, "ticket-0", false))

	count, err := store.CountAdvertisedTickets()
	require.NoError(t, err)
	assert.Equal(t, models.MaxAdvertisedTickets-1, count)
}

func TestAdvertiseGrantBlockedWhileSlotLockHeld(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewCatalogService(store, deniedSlotLock{}, logger.NewLogger())
	admin := auth.Identity{Email: "admin@example.com"}
	seedUser(t, store, admin.Email, models.RoleAdmin, false)
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-1"}))

	err := svc.SetAdvertise(context.Background(), admin, "ticket-1", true)
	assert.ErrorIs(t, err, services.ErrAdvertiseBusy)

	// Clearing never takes the lock.
	require.NoError(t, svc.SetAdvertise(context.Background(), admin, "ticket-1", false))
}

func TestListApprovedFiltersModerationStates(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewCatalogService(store, services.NoopSlotLock{}, logger.NewLogger())

	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-1", Status: models.TicketApproved}))
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-2", Status: models.TicketPending}))
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-3", Status: models.TicketRejected}))

	tickets, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "ticket-1", tickets[0].ID)
}
