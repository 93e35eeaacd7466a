package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	PaymentID     string    `json:"payment_id" bun:"payment_id,pk"`
	TransactionID string    `json:"transaction_id" bun:"transaction_id,unique"`
	TicketID      string    `json:"ticketID" bun:"ticket_id"`
	BookingID     string    `json:"bookingId" bun:"booking_id"`
	Customer      Customer  `json:"customer" bun:"embed:"`
	Vendor        Vendor    `json:"vendor" bun:"embed:"`
	Quantity      int       `json:"quantity" bun:"quantity"`
	Price         float64   `json:"price" bun:"price"`
	CreatedDate   time.Time `json:"created_date" bun:"created_date"`
}

type PaymentEvent struct {
	Type      string    `json:"type"`
	PaymentID string    `json:"payment_id"`
	Payment   *Payment  `json:"payment"`
	Timestamp time.Time `json:"timestamp"`
}
