package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/internal/handlers"
	"ticket-marketplace/internal/kafka"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/services"
	"ticket-marketplace/internal/storage"
)

type stubGateway struct {
	sessions map[string]*models.CheckoutSession
}

func (g *stubGateway) CreateSession(ctx context.Context, req *models.CreateCheckoutRequest) (*models.CheckoutSession, error) {
	return &models.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.test/cs_test_1"}, nil
}

func (g *stubGateway) RetrieveSession(ctx context.Context, id string) (*models.CheckoutSession, error) {
	sess, ok := g.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	return sess, nil
}

func newCheckoutRouter(t *testing.T, store *storage.InMemoryStore, gateway *stubGateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger()
	producer, err := kafka.NewProducer(nil, true, log)
	require.NoError(t, err)

	paymentService := services.NewPaymentService(store, gateway, producer, log)
	handler := handlers.NewCheckoutHandler(paymentService)

	router := gin.New()
	router.POST("/create-checkout-session", handler.CreateSession)
	router.POST("/payment-success", handler.PaymentSuccess)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateCheckoutSessionEndpoint(t *testing.T) {
	store := storage.NewInMemoryStore()
	router := newCheckoutRouter(t, store, &stubGateway{})

	w := postJSON(t, router, "/create-checkout-session", models.CreateCheckoutRequest{
		Title:     "Concert",
		Price:     500,
		Quantity:  2,
		TicketID:  "ticket-1",
		BookingID: "booking-1",
		Customer:  models.Customer{Email: "buyer@example.com", Name: "Buyer"},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CreateCheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.test/cs_test_1", resp.URL)
}

func TestCreateCheckoutSessionRejectsInvalidPayload(t *testing.T) {
	store := storage.NewInMemoryStore()
	router := newCheckoutRouter(t, store, &stubGateway{})

	w := postJSON(t, router, "/create-checkout-session", gin.H{"title": "Concert"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentSuccessReconcilesAndReplaysSafely(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.SaveTicket(&models.Ticket{
		ID:       "ticket-1",
		Title:    "Concert",
		Quantity: 10,
		Vendor:   models.Vendor{Email: "vendor@example.com", Name: "Vendor"},
	}))
	require.NoError(t, store.SaveBooking(&models.Booking{
		ID:       "booking-1",
		TicketID: "ticket-1",
		Customer: models.Customer{Email: "buyer@example.com"},
		Vendor:   models.Vendor{Email: "vendor@example.com"},
		Quantity: 2,
		Status:   models.BookingPending,
	}))

	gateway := &stubGateway{sessions: map[string]*models.CheckoutSession{
		"cs_test_1": {
			ID:              "cs_test_1",
			Status:          models.SessionComplete,
			PaymentIntentID: "pi_test_1",
			AmountTotal:     1000,
			Metadata: map[string]string{
				models.MetaTicketID:      "ticket-1",
				models.MetaBookingID:     "booking-1",
				models.MetaCustomerEmail: "buyer@example.com",
				models.MetaCustomerName:  "Buyer",
				models.MetaQuantity:      "2",
			},
		},
	}}
	router := newCheckoutRouter(t, store, gateway)

	w := postJSON(t, router, "/payment-success", models.PaymentSuccessRequest{SessionID: "cs_test_1"})
	require.Equal(t, http.StatusOK, w.Code)

	var first models.PaymentSuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "pi_test_1", first.TransactionID)
	assert.NotEmpty(t, first.PaymentID)

	// The replayed callback stays success-shaped but mints nothing new.
	w = postJSON(t, router, "/payment-success", models.PaymentSuccessRequest{SessionID: "cs_test_1"})
	require.Equal(t, http.StatusOK, w.Code)

	var second models.PaymentSuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, "pi_test_1", second.TransactionID)
	assert.Empty(t, second.PaymentID)

	ticket, err := store.GetTicket("ticket-1")
	require.NoError(t, err)
	assert.Equal(t, 8, ticket.Quantity)
}

func TestPaymentSuccessUnknownSession(t *testing.T) {
	store := storage.NewInMemoryStore()
	router := newCheckoutRouter(t, store, &stubGateway{sessions: map[string]*models.CheckoutSession{}})

	w := postJSON(t, router, "/payment-success", models.PaymentSuccessRequest{SessionID: "cs_missing"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
