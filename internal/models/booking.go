package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BookingPending = "pending"
	// BookingPaid is written exactly once by the reconciliation flow. The
	// capitalisation is part of the wire contract with the frontend.
	BookingPaid = "Paid"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID        string    `json:"id" bun:"id,pk"`
	TicketID  string    `json:"ticketID" bun:"ticket_id"`
	Customer  Customer  `json:"customer" bun:"embed:"`
	Vendor    Vendor    `json:"vendor" bun:"embed:"`
	Quantity  int       `json:"quantity" bun:"quantity"`
	Status    string    `json:"status" bun:"status"`
	CreatedAt time.Time `json:"created_at" bun:"created_at"`
}

type BookTicketRequest struct {
	TicketID string `json:"ticketID" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookedTicket is a customer's booking joined with the listing details,
// the SQL form of the original aggregation pipeline.
type BookedTicket struct {
	BookingID   string    `json:"id"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	TicketTitle string    `json:"title"`
	TicketImage string    `json:"image"`
	TicketPrice float64   `json:"price"`
}

// BookingRequest is a vendor-side view of a booking joined with the
// listing's title and price.
type BookingRequest struct {
	BookingID   string   `json:"id"`
	Customer    Customer `json:"customer"`
	Vendor      Vendor   `json:"vendor"`
	Status      string   `json:"status"`
	Quantity    int      `json:"quantity"`
	TicketPrice float64  `json:"ticketPrice"`
	TicketTitle string   `json:"ticketTitle"`
}

type BookingEvent struct {
	Type      string    `json:"type"`
	BookingID string    `json:"booking_id"`
	Booking   *Booking  `json:"booking"`
	Timestamp time.Time `json:"timestamp"`
}
