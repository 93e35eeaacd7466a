package models

// Session metadata keys. Everything the reconciliation flow needs later is
// embedded here when the session is created.
const (
	MetaTicketID      = "ticketID"
	MetaBookingID     = "bookingId"
	MetaCustomerEmail = "customerEmail"
	MetaCustomerName  = "customerName"
	MetaQuantity      = "quantity"
)

// SessionComplete is the gateway's terminal status for a paid session.
const SessionComplete = "complete"

// CreateCheckoutRequest is the body of POST /create-checkout-session.
type CreateCheckoutRequest struct {
	Title     string   `json:"title" binding:"required"`
	Image     string   `json:"image"`
	Price     float64  `json:"price" binding:"required,gt=0"`
	Quantity  int      `json:"quantity" binding:"required,gt=0"`
	TicketID  string   `json:"ticketID" binding:"required"`
	BookingID string   `json:"bookingId" binding:"required"`
	Customer  Customer `json:"customer" binding:"required"`
}

type CreateCheckoutResponse struct {
	URL string `json:"url"`
}

// CheckoutSession is the authoritative session record fetched back from the
// gateway. Amounts are in minor currency units, as the gateway reports them.
type CheckoutSession struct {
	ID              string            `json:"id"`
	Status          string            `json:"status"`
	PaymentIntentID string            `json:"payment_intent"`
	AmountTotal     int64             `json:"amount_total"`
	Metadata        map[string]string `json:"metadata"`
	URL             string            `json:"url,omitempty"`
}

type PaymentSuccessRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// PaymentSuccessResponse carries the transaction id; PaymentID is present
// only when a new ledger entry was created by this call.
type PaymentSuccessResponse struct {
	TransactionID string `json:"transactionId"`
	PaymentID     string `json:"paymentId,omitempty"`
}
