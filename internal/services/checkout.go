package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrStripeAPIError         = errors.New("stripe API error")
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
)

// CheckoutGateway is the slice of the hosted payment provider the
// reconciliation flow consumes: create a session, retrieve one by id.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, req *models.CreateCheckoutRequest) (*models.CheckoutSession, error)
	RetrieveSession(ctx context.Context, id string) (*models.CheckoutSession, error)
}

// StripeService implements CheckoutGateway on Stripe Checkout.
type StripeService struct {
	client *client.API
	cfg    config.StripeConfig
	log    *logger.Logger
}

func NewStripeService(cfg config.StripeConfig, log *logger.Logger) (*StripeService, error) {
	if cfg.SecretKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY environment variable not set")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(cfg.SecretKey, nil)
	if sc == nil {
		log.Error("STRIPE", "Failed to initialize Stripe client")
		return nil, ErrStripeClientInitFailed
	}

	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeService{
		client: sc,
		cfg:    cfg,
		log:    log,
	}, nil
}

// CreateSession creates a hosted checkout session priced in minor currency
// units, with every identifier the reconciliation flow needs embedded in the
// session metadata. No local store is touched.
func (s *StripeService) CreateSession(ctx context.Context, req *models.CreateCheckoutRequest) (*models.CheckoutSession, error) {
	s.log.LogPayment("SESSION", req.BookingID, fmt.Sprintf("Creating checkout session for ticket %s, amount: %.2f x %d",
		req.TicketID, req.Price, req.Quantity))

	amountInCents := int64(math.Round(req.Price * 100))

	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.Title),
	}
	if req.Image != "" {
		productData.Images = []*string{stripe.String(req.Image)}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: []*string{stripe.String("card")},
		CustomerEmail:      stripe.String(req.Customer.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(s.cfg.Currency),
					UnitAmount:  stripe.Int64(amountInCents),
					ProductData: productData,
				},
				Quantity: stripe.Int64(int64(req.Quantity)),
			},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		Metadata: map[string]string{
			models.MetaTicketID:      req.TicketID,
			models.MetaBookingID:     req.BookingID,
			models.MetaCustomerEmail: req.Customer.Email,
			models.MetaCustomerName:  req.Customer.Name,
			models.MetaQuantity:      strconv.Itoa(req.Quantity),
		},
	}

	sess, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create checkout session: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	s.log.LogPayment("SESSION", req.BookingID, fmt.Sprintf("Checkout session created: %s", sess.ID))
	return sessionFromStripe(sess), nil
}

// RetrieveSession fetches the authoritative session record. Caller-supplied
// payment details are never trusted; this is the source of truth.
func (s *StripeService) RetrieveSession(ctx context.Context, id string) (*models.CheckoutSession, error) {
	s.log.LogPayment("SESSION", id, "Retrieving checkout session from Stripe")

	sess, err := s.client.CheckoutSessions.Get(id, nil)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to retrieve checkout session %s: %v", id, err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	return sessionFromStripe(sess), nil
}

func sessionFromStripe(sess *stripe.CheckoutSession) *models.CheckoutSession {
	out := &models.CheckoutSession{
		ID:          sess.ID,
		Status:      string(sess.Status),
		AmountTotal: sess.AmountTotal,
		Metadata:    sess.Metadata,
		URL:         sess.URL,
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out
}
