package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/middleware"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/service"
)

// RoomHandler handles room and call endpoints
type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// List godoc
// @Summary List rooms the principal participates in
// @Tags Rooms
// @Produce json
// @Success 200 {array} model.Room
// @Router /communication/rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	principal := middleware.Principal(c)

	rooms, err := h.roomService.GetUserRooms(principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// Create godoc
// @Summary Create a room with the principal as admin
// @Tags Rooms
// @Accept json
// @Produce json
// @Param body body model.CreateRoomRequest true "Room"
// @Success 201 {object} model.Room
// @Failure 400 {object} model.ErrorResponse
// @Router /communication/rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	principal := middleware.Principal(c)

	var req model.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// Get godoc
// @Summary Retrieve a room the principal participates in
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} model.Room
// @Failure 404 {object} model.ErrorResponse
// @Router /communication/rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	principal := middleware.Principal(c)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid room id"})
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), roomID, principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// AddParticipant godoc
// @Summary Add a user to a room by id or username
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param body body model.AddParticipantRequest true "User"
// @Success 201 {object} model.Participant
// @Failure 409 {object} model.ErrorResponse
// @Router /communication/rooms/{id}/add_participant [post]
func (h *RoomHandler) AddParticipant(c *gin.Context) {
	principal := middleware.Principal(c)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid room id"})
		return
	}

	var req model.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	participant, err := h.roomService.AddParticipant(c.Request.Context(), roomID, principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participant)
}

// StartCall godoc
// @Summary Start a call: invite every other participant and announce it
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param body body model.StartCallRequest false "Call options"
// @Success 201 {object} model.Message
// @Router /communication/rooms/{id}/start_call [post]
func (h *RoomHandler) StartCall(c *gin.Context) {
	principal := middleware.Principal(c)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid room id"})
		return
	}

	var req model.StartCallRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	msg, err := h.roomService.StartCall(c.Request.Context(), principal, roomID, req.CallType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// WebRTCConfig godoc
// @Summary Return ICE servers and a signaling session token for a room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} model.WebRTCConfigResponse
// @Router /communication/rooms/{id}/webrtc_config [get]
func (h *RoomHandler) WebRTCConfig(c *gin.Context) {
	principal := middleware.Principal(c)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid room id"})
		return
	}

	cfg, err := h.roomService.WebRTCConfig(c.Request.Context(), roomID, principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// FindDirect godoc
// @Summary Look up the direct room between the principal and a user
// @Tags Rooms
// @Produce json
// @Param username query string true "Other username"
// @Success 200 {object} model.Room
// @Failure 404 {object} model.ErrorResponse
// @Router /communication/rooms/find-direct [get]
func (h *RoomHandler) FindDirect(c *gin.Context) {
	principal := middleware.Principal(c)

	room, err := h.roomService.FindDirect(principal, c.Query("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// FindOrCreateDirect godoc
// @Summary Find or create the direct room between two usernames
// @Tags Rooms
// @Accept json
// @Produce json
// @Param body body model.FindDirectRequest true "Username pair"
// @Success 200 {object} model.Room
// @Success 201 {object} model.Room
// @Router /communication/rooms/find-direct [post]
func (h *RoomHandler) FindOrCreateDirect(c *gin.Context) {
	var req model.FindDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	room, created, err := h.roomService.FindOrCreateDirect(req.Username1, req.Username2)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, room)
}
