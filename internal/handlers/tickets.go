package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticket-marketplace/internal/middleware"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/services"
	"ticket-marketplace/internal/utils"
)

type TicketHandler struct {
	catalogService *services.CatalogService
}

func NewTicketHandler(catalogService *services.CatalogService) *TicketHandler {
	return &TicketHandler{catalogService: catalogService}
}

// Submit handles POST /tickets: a vendor's new listing, pending moderation.
func (h *TicketHandler) Submit(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	var req models.SubmitTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	ticket, err := h.catalogService.Submit(c.Request.Context(), identity, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Ticket submitted", ticket))
}

// ListApproved handles GET /approved-tickets (public browse).
func (h *TicketHandler) ListApproved(c *gin.Context) {
	tickets, err := h.catalogService.ListApproved(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Approved tickets retrieved", tickets))
}

// List handles GET /tickets (admin moderation queue).
func (h *TicketHandler) List(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	tickets, err := h.catalogService.List(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Tickets retrieved", tickets))
}

// ListMine handles GET /added-tickets (a vendor's own listings).
func (h *TicketHandler) ListMine(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	tickets, err := h.catalogService.ListByVendor(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Vendor tickets retrieved", tickets))
}

func (h *TicketHandler) Get(c *gin.Context) {
	ticket, err := h.catalogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Ticket retrieved", ticket))
}

// Moderate handles PATCH /tickets/:id (admin status update).
func (h *TicketHandler) Moderate(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	var req models.UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	id := c.Param("id")
	if err := h.catalogService.Moderate(c.Request.Context(), identity, id, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Status updated", gin.H{"id": id, "status": req.Status}))
}

// Advertise handles PATCH /advertise-ticket/:id with the 6-slot cap.
func (h *TicketHandler) Advertise(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	var req models.AdvertiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	id := c.Param("id")
	if err := h.catalogService.SetAdvertise(c.Request.Context(), identity, id, req.Advertise); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Advertise flag updated", gin.H{"id": id, "advertise": req.Advertise}))
}
