package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/middleware"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/service"
)

// MessageHandler handles message endpoints
type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// List godoc
// @Summary List a room's messages, newest first
// @Tags Messages
// @Produce json
// @Param room_id query string true "Room ID"
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size, max 100"
// @Success 200 {array} model.Message
// @Failure 404 {object} model.ErrorResponse
// @Router /communication/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	principal := middleware.Principal(c)

	var req model.MessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid room id"})
		return
	}

	messages, err := h.messageService.GetRoomMessages(c.Request.Context(), roomID, principal.ID, req.Page, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Create godoc
// @Summary Persist a message and fan it out to the room
// @Tags Messages
// @Accept json
// @Produce json
// @Param body body model.SendMessageRequest true "Message"
// @Success 201 {object} model.Message
// @Failure 403 {object} model.ErrorResponse
// @Router /communication/messages [post]
func (h *MessageHandler) Create(c *gin.Context) {
	principal := middleware.Principal(c)

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	msg, err := h.messageService.SendMessage(c.Request.Context(), principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
