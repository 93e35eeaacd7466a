package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticket-marketplace/internal/middleware"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/services"
	"ticket-marketplace/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Upsert handles POST /user: first login registers a customer, later logins
// refresh the timestamp.
func (h *UserHandler) Upsert(c *gin.Context) {
	var req models.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	user, err := h.userService.Upsert(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("User saved", user))
}

func (h *UserHandler) List(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	users, err := h.userService.List(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Users retrieved", users))
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("User ID is required", err.Error()))
		return
	}

	if err := h.userService.UpdateRole(c.Request.Context(), identity, &req); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Role updated", gin.H{"id": req.ID, "role": req.Role}))
}

func (h *UserHandler) MarkFraud(c *gin.Context) {
	h.setFraud(c, true)
}

func (h *UserHandler) UnmarkFraud(c *gin.Context) {
	h.setFraud(c, false)
}

func (h *UserHandler) setFraud(c *gin.Context, fraud bool) {
	identity, _ := middleware.GetIdentity(c)

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("User ID is required", ""))
		return
	}

	if err := h.userService.SetFraud(c.Request.Context(), identity, id, fraud); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Fraud flag updated", gin.H{"id": id, "fraud": fraud}))
}
