package auth

import (
	"errors"

	"ticket-marketplace/internal/models"
)

var ErrForbidden = errors.New("forbidden")

// IsAdmin gates admin-only operations on the stored role.
func IsAdmin(user *models.User) error {
	if user == nil || user.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// IsVendor gates listing submission. Fraud-marked vendors lose the
// capability without losing the role.
func IsVendor(user *models.User) error {
	if user == nil || user.Role != models.RoleVendor {
		return ErrForbidden
	}
	if user.Fraud {
		return ErrForbidden
	}
	return nil
}

// VendorOwnsTicket checks that the verified identity is the listing's vendor.
func VendorOwnsTicket(identity Identity, ticket *models.Ticket) error {
	if ticket == nil || ticket.Vendor.Email != identity.Email {
		return ErrForbidden
	}
	return nil
}

// VendorOwnsBooking checks that a booking request belongs to the vendor.
func VendorOwnsBooking(identity Identity, booking *models.Booking) error {
	if booking == nil || booking.Vendor.Email != identity.Email {
		return ErrForbidden
	}
	return nil
}

// CustomerOwnsBooking checks that the verified identity placed the booking.
func CustomerOwnsBooking(identity Identity, booking *models.Booking) error {
	if booking == nil || booking.Customer.Email != identity.Email {
		return ErrForbidden
	}
	return nil
}
