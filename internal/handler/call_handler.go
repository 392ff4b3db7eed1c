package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/middleware"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/service"
)

// CallHandler handles the incoming-call notification endpoints
type CallHandler struct {
	notifications *service.NotificationService
}

func NewCallHandler(notifications *service.NotificationService) *CallHandler {
	return &CallHandler{notifications: notifications}
}

// Create godoc
// @Summary Ring a recipient: create a pending incoming-call notification
// @Tags Calls
// @Accept json
// @Produce json
// @Param body body model.CreateIncomingCallRequest true "Call"
// @Success 201 {object} model.IncomingCallNotification
// @Failure 403 {object} model.ErrorResponse
// @Router /communication/incoming-calls [post]
func (h *CallHandler) Create(c *gin.Context) {
	principal := middleware.Principal(c)

	var req model.CreateIncomingCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	notification, err := h.notifications.Create(c.Request.Context(), principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, notification)
}

// ListActive godoc
// @Summary List the principal's pending and seen notifications
// @Tags Calls
// @Produce json
// @Success 200 {array} model.IncomingCallNotification
// @Router /communication/incoming-calls [get]
func (h *CallHandler) ListActive(c *gin.Context) {
	principal := middleware.Principal(c)

	notifications, err := h.notifications.ListActive(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// Update godoc
// @Summary Transition a notification (recipient only)
// @Tags Calls
// @Accept json
// @Produce json
// @Param id path string true "Notification ID"
// @Param body body model.UpdateIncomingCallRequest true "Target status"
// @Success 200 {object} model.IncomingCallNotification
// @Failure 403 {object} model.ErrorResponse
// @Router /communication/incoming-calls/{id} [put]
func (h *CallHandler) Update(c *gin.Context) {
	principal := middleware.Principal(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid notification id"})
		return
	}

	var req model.UpdateIncomingCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	notification, err := h.notifications.Transition(c.Request.Context(), principal, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}
