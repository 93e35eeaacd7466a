package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/services"
	"ticket-marketplace/internal/utils"
)

type CheckoutHandler struct {
	paymentService *services.PaymentService
}

func NewCheckoutHandler(paymentService *services.PaymentService) *CheckoutHandler {
	return &CheckoutHandler{paymentService: paymentService}
}

// CreateSession handles POST /create-checkout-session and returns the
// hosted session URL.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	url, err := h.paymentService.CreateCheckoutSession(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create checkout session", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.CreateCheckoutResponse{URL: url})
}

// PaymentSuccess handles POST /payment-success. Skipped reconciliations are
// success-shaped responses carrying only the transaction id, so retried
// callbacks stay harmless.
func (h *CheckoutHandler) PaymentSuccess(c *gin.Context) {
	var req models.PaymentSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	result, err := h.paymentService.CompletePayment(c.Request.Context(), req.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Payment reconciliation failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.PaymentSuccessResponse{
		TransactionID: result.TransactionID,
		PaymentID:     result.PaymentID,
	})
}
