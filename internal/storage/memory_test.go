package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/storage"
)

func testPayment(transactionID string, quantity int) *models.Payment {
	return &models.Payment{
		PaymentID:     "pay_" + transactionID,
		TransactionID: transactionID,
		TicketID:      "ticket-1",
		BookingID:     "booking-1",
		Customer:      models.Customer{Email: "buyer@example.com"},
		Vendor:        models.Vendor{Email: "vendor@example.com"},
		Quantity:      quantity,
		Price:         10,
		CreatedDate:   time.Now(),
	}
}

func TestApplyPaymentWritesAllThree(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-1", Quantity: 5}))
	require.NoError(t, store.SaveBooking(&models.Booking{ID: "booking-1", Status: models.BookingPending}))

	result, err := store.ApplyPayment(context.Background(), testPayment("pi_1", 2))
	require.NoError(t, err)
	assert.True(t, result.InventoryApplied)
	assert.True(t, result.BookingPaid)

	ticket, err := store.GetTicket("ticket-1")
	require.NoError(t, err)
	assert.Equal(t, 3, ticket.Quantity)

	booking, err := store.GetBooking("booking-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, booking.Status)

	payment, err := store.GetPaymentByTransactionID("pi_1")
	require.NoError(t, err)
	assert.Equal(t, "pay_pi_1", payment.PaymentID)
}

func TestApplyPaymentRejectsDuplicateTransaction(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-1", Quantity: 5}))
	require.NoError(t, store.SaveBooking(&models.Booking{ID: "booking-1", Status: models.BookingPending}))

	_, err := store.ApplyPayment(context.Background(), testPayment("pi_1", 2))
	require.NoError(t, err)

	_, err = store.ApplyPayment(context.Background(), testPayment("pi_1", 2))
	assert.ErrorIs(t, err, storage.ErrDuplicateTransaction)

	ticket, err := store.GetTicket("ticket-1")
	require.NoError(t, err)
	assert.Equal(t, 3, ticket.Quantity, "duplicate must not decrement again")
}

func TestApplyPaymentGuardsInventoryFloor(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-1", Quantity: 1}))
	require.NoError(t, store.SaveBooking(&models.Booking{ID: "booking-1", Status: models.BookingPending}))

	result, err := store.ApplyPayment(context.Background(), testPayment("pi_1", 2))
	require.NoError(t, err)

	assert.False(t, result.InventoryApplied)
	assert.True(t, result.BookingPaid)

	// The payment row lands even when the decrement refuses.
	_, err = store.GetPaymentByTransactionID("pi_1")
	require.NoError(t, err)

	ticket, err := store.GetTicket("ticket-1")
	require.NoError(t, err)
	assert.Equal(t, 1, ticket.Quantity)
}

func TestApplyPaymentMissingBooking(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-1", Quantity: 5}))

	result, err := store.ApplyPayment(context.Background(), testPayment("pi_1", 2))
	require.NoError(t, err)
	assert.True(t, result.InventoryApplied)
	assert.False(t, result.BookingPaid)
}

func TestApplyPaymentConcurrentSameTransaction(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-1", Quantity: 100}))
	require.NoError(t, store.SaveBooking(&models.Booking{ID: "booking-1", Status: models.BookingPending}))

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.ApplyPayment(context.Background(), testPayment("pi_1", 2))
		}(i)
	}
	wg.Wait()

	applied := 0
	for _, err := range errs {
		if err == nil {
			applied++
		} else {
			assert.ErrorIs(t, err, storage.ErrDuplicateTransaction)
		}
	}
	assert.Equal(t, 1, applied, "exactly one racer wins the unique key")

	ticket, err := store.GetTicket("ticket-1")
	require.NoError(t, err)
	assert.Equal(t, 98, ticket.Quantity)
}

func TestGetReturnsCopies(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.SaveTicket(&models.Ticket{ID: "ticket-1", Quantity: 5}))

	first, err := store.GetTicket("ticket-1")
	require.NoError(t, err)
	first.Quantity = 0

	second, err := store.GetTicket("ticket-1")
	require.NoError(t, err)
	assert.Equal(t, 5, second.Quantity, "callers must not mutate stored state")
}

func TestUserLookupAndRoleUpdates(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.SaveUser(&models.User{ID: "user-1", Email: "user@example.com", Role: models.RoleCustomer}))

	_, err := store.GetUserByEmail("missing@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.UpdateUserRole("user-1", models.RoleVendor))
	assert.ErrorIs(t, store.UpdateUserRole("user-missing", models.RoleVendor), storage.ErrNotFound)

	user, err := store.GetUserByEmail("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleVendor, user.Role)
}
