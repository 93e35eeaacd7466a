package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TicketStatus string

const (
	TicketPending  TicketStatus = "pending"
	TicketApproved TicketStatus = "approved"
	TicketRejected TicketStatus = "rejected"
)

// MaxAdvertisedTickets caps how many tickets may hold advertise=true at once.
const MaxAdvertisedTickets = 6

// Vendor is the seller snapshot embedded in tickets, bookings and payments.
type Vendor struct {
	Email string `json:"email" bun:"vendor_email"`
	Name  string `json:"name" bun:"vendor_name"`
}

// Customer is the buyer snapshot embedded in bookings and payments.
type Customer struct {
	Email string `json:"email" bun:"customer_email"`
	Name  string `json:"name" bun:"customer_name"`
}

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID        string       `json:"id" bun:"id,pk"`
	Title     string       `json:"title" bun:"title"`
	Image     string       `json:"image" bun:"image"`
	Price     float64      `json:"price" bun:"price"`
	Quantity  int          `json:"quantity" bun:"quantity"`
	Vendor    Vendor       `json:"vendor" bun:"embed:"`
	Status    TicketStatus `json:"status" bun:"status"`
	Advertise bool         `json:"advertise" bun:"advertise"`
	CreatedAt time.Time    `json:"created_at" bun:"created_at"`
}

// SubmitTicketRequest is a vendor's listing submission. The vendor snapshot
// and the pending status are filled in from the verified identity.
type SubmitTicketRequest struct {
	Title    string  `json:"title" binding:"required"`
	Image    string  `json:"image"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Quantity int     `json:"quantity" binding:"required,gt=0"`
}

type UpdateTicketStatusRequest struct {
	Status TicketStatus `json:"status" binding:"required"`
}

type AdvertiseRequest struct {
	Advertise bool `json:"advertise"`
}
