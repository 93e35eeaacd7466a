package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticket-marketplace/internal/middleware"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/services"
	"ticket-marketplace/internal/utils"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Book handles POST /book-ticket: a pending booking ahead of checkout.
func (h *BookingHandler) Book(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	var req models.BookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	booking, err := h.bookingService.Book(c.Request.Context(), identity, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Ticket booked", booking))
}

// ListBooked handles GET /booked-tickets: the customer's bookings joined
// with listing details.
func (h *BookingHandler) ListBooked(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	booked, err := h.bookingService.ListBooked(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Booked tickets retrieved", booked))
}

// ListRequests handles GET /requested-booking: requests on the vendor's
// listings.
func (h *BookingHandler) ListRequests(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	requests, err := h.bookingService.ListRequests(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Booking requests retrieved", requests))
}

// UpdateStatus handles PATCH /booking-status/:id for the owning vendor.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	id := c.Param("id")
	if err := h.bookingService.UpdateStatus(c.Request.Context(), identity, id, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Status updated", gin.H{"id": id, "status": req.Status}))
}
