package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ticket-marketplace/internal/auth"
	"ticket-marketplace/internal/services"
	"ticket-marketplace/internal/utils"
)

// respondServiceError maps service sentinels onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrForbidden):
		c.JSON(http.StatusForbidden, utils.ErrorResponse("Forbidden", err.Error()))
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, services.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Not found", err.Error()))
	case errors.Is(err, services.ErrAdvertiseCapReached):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Limit reached! You cannot advertise more than 6 tickets.", ""))
	case errors.Is(err, services.ErrAdvertiseBusy):
		c.JSON(http.StatusConflict, utils.ErrorResponse("Advertise slots are busy, try again", ""))
	default:
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Internal Server Error", err.Error()))
	}
}
