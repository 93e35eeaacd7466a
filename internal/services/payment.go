package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ticket-marketplace/internal/kafka"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/storage"
	"ticket-marketplace/internal/utils"
)

// PaymentService owns the booking-payment reconciliation flow: session
// creation against the gateway and completion handling against the stores.
type PaymentService struct {
	store    storage.Store
	gateway  CheckoutGateway
	producer *kafka.Producer
	log      *logger.Logger
}

func NewPaymentService(store storage.Store, gateway CheckoutGateway, producer *kafka.Producer, log *logger.Logger) *PaymentService {
	return &PaymentService{
		store:    store,
		gateway:  gateway,
		producer: producer,
		log:      log,
	}
}

// CompletionResult is the outcome of a completion call. PaymentID is set
// only when a new ledger entry was created by this call; every skipped
// path still reports the transaction id.
type CompletionResult struct {
	TransactionID    string
	PaymentID        string
	Applied          bool
	InventoryApplied bool
}

// CreateCheckoutSession asks the gateway for a hosted session and returns
// its URL. Deliberately side-effect-free against local stores; everything
// needed later travels in the session metadata.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, req *models.CreateCheckoutRequest) (string, error) {
	sess, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CompletePayment reconciles a reported completion. The session record is
// fetched back from the gateway, cross-checked, and on a passed guard the
// three writes (ledger insert, inventory decrement, booking flip) are
// applied in one store transaction. Every guard failure is an idempotent
// no-op so retried callbacks never double-apply.
func (s *PaymentService) CompletePayment(ctx context.Context, sessionID string) (*CompletionResult, error) {
	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session: %w", err)
	}

	result := &CompletionResult{TransactionID: sess.PaymentIntentID}

	if sess.Status != models.SessionComplete {
		s.log.LogPayment("SKIP", sessionID, fmt.Sprintf("Session status is %q, nothing to apply", sess.Status))
		return result, nil
	}
	if sess.PaymentIntentID == "" {
		s.log.LogPayment("SKIP", sessionID, "Session carries no payment intent")
		return result, nil
	}

	ticketID := sess.Metadata[models.MetaTicketID]
	bookingID := sess.Metadata[models.MetaBookingID]
	quantity, _ := strconv.Atoi(sess.Metadata[models.MetaQuantity])

	ticket, err := s.store.GetTicket(ticketID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.LogPayment("SKIP", sessionID, fmt.Sprintf("Ticket %s no longer exists", ticketID))
			return result, nil
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}

	if _, err := s.store.GetPaymentByTransactionID(sess.PaymentIntentID); err == nil {
		s.log.LogPayment("SKIP", sessionID, fmt.Sprintf("Transaction %s already recorded", sess.PaymentIntentID))
		s.publishPaymentEvent("payment.skipped", &models.Payment{TransactionID: sess.PaymentIntentID})
		return result, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check ledger: %w", err)
	}

	payment := &models.Payment{
		PaymentID:     utils.GeneratePaymentID(),
		TransactionID: sess.PaymentIntentID,
		TicketID:      ticketID,
		BookingID:     bookingID,
		Customer: models.Customer{
			Email: sess.Metadata[models.MetaCustomerEmail],
			Name:  sess.Metadata[models.MetaCustomerName],
		},
		Vendor:   ticket.Vendor,
		Quantity: quantity,
		// The charged amount comes from the gateway, never the caller.
		Price:       float64(sess.AmountTotal) / 100.0,
		CreatedDate: time.Now(),
	}

	applied, err := s.store.ApplyPayment(ctx, payment)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateTransaction) {
			// A concurrent completion for the same transaction id got there
			// first; the unique key is the real arbiter.
			s.log.LogPayment("SKIP", sessionID, fmt.Sprintf("Transaction %s applied concurrently", sess.PaymentIntentID))
			return result, nil
		}
		return nil, fmt.Errorf("failed to apply payment: %w", err)
	}

	result.PaymentID = payment.PaymentID
	result.Applied = true
	result.InventoryApplied = applied.InventoryApplied

	if !applied.InventoryApplied {
		// Ledger and inventory now disagree: the sale was recorded but the
		// remaining quantity was short. Surfaced for operators to settle.
		s.log.Warn("PAYMENT", fmt.Sprintf("Payment %s recorded but inventory decrement of %d did not apply to ticket %s",
			payment.PaymentID, payment.Quantity, payment.TicketID))
	}
	if !applied.BookingPaid {
		s.log.Warn("PAYMENT", fmt.Sprintf("Payment %s recorded but booking %s was not found to mark paid",
			payment.PaymentID, payment.BookingID))
	}

	s.log.LogPayment("APPLIED", payment.PaymentID, fmt.Sprintf("Transaction %s reconciled for booking %s",
		payment.TransactionID, payment.BookingID))
	s.publishPaymentEvent("payment.completed", payment)

	return result, nil
}

func (s *PaymentService) publishPaymentEvent(eventType string, payment *models.Payment) {
	event := &models.PaymentEvent{
		Type:      eventType,
		PaymentID: payment.PaymentID,
		Payment:   payment,
		Timestamp: time.Now(),
	}

	if err := s.producer.PublishPaymentEvent(event); err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish %s event for payment %s: %v", eventType, payment.PaymentID, err))
	}
}
