package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/startuphub/backend/internal/media"
	"github.com/startuphub/backend/internal/middleware"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
	"github.com/startuphub/backend/internal/service"
	"github.com/startuphub/backend/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by the CORS layer in front
	},
}

// Hard deadline across auth and participant checks on the accept path.
const acceptTimeout = 5 * time.Second

// WSHandler upgrades chat and signaling WebSockets and runs the accept
// protocol before handing the socket to a consumer.
type WSHandler struct {
	fabric         pubsub.Fabric
	authService    *service.AuthService
	roomService    *service.RoomService
	messageService *service.MessageService
	notifications  *service.NotificationService
	gateway        *media.Gateway
}

func NewWSHandler(
	fabric pubsub.Fabric,
	authService *service.AuthService,
	roomService *service.RoomService,
	messageService *service.MessageService,
	notifications *service.NotificationService,
	gateway *media.Gateway,
) *WSHandler {
	return &WSHandler{
		fabric:         fabric,
		authService:    authService,
		roomService:    roomService,
		messageService: messageService,
		notifications:  notifications,
		gateway:        gateway,
	}
}

// ChatRoom handles /ws/room/{room_id}: chat scoped to a known room
func (h *WSHandler) ChatRoom(c *gin.Context) {
	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), acceptTimeout)
	defer cancel()

	principal, ok := h.principal(ctx, c, sock)
	if !ok {
		return
	}

	raw := c.Param("room_id")
	if raw == "" {
		ws.CloseWith(sock, ws.CloseMissingIdent, "room_id required")
		return
	}
	roomID, err := uuid.Parse(raw)
	if err != nil {
		ws.CloseWith(sock, ws.CloseRoomUnresolvable, "invalid room id")
		return
	}

	room, ok := h.acceptRoom(ctx, sock, roomID, principal)
	if !ok {
		return
	}

	consumer := ws.NewChatConsumer(sock, principal, room, h.fabric, h.roomService, h.messageService, h.notifications, h.gateway)
	go consumer.Run(context.Background())
}

// ChatPeer handles /ws/communication/{username}: chat with a peer, resolving
// the direct room on connect
func (h *WSHandler) ChatPeer(c *gin.Context) {
	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), acceptTimeout)
	defer cancel()

	principal, ok := h.principal(ctx, c, sock)
	if !ok {
		return
	}

	username := c.Param("username")
	if username == "" {
		ws.CloseWith(sock, ws.CloseMissingIdent, "username required")
		return
	}

	room, _, err := h.roomService.FindOrCreateDirect(principal.Username, username)
	if err != nil {
		ws.CloseWith(sock, ws.CloseRoomUnresolvable, "could not resolve direct room")
		return
	}

	consumer := ws.NewChatConsumer(sock, principal, room, h.fabric, h.roomService, h.messageService, h.notifications, h.gateway)
	go consumer.Run(context.Background())
}

// WebRTC handles /ws/webrtc/{room_id}: the dedicated signaling relay
func (h *WSHandler) WebRTC(c *gin.Context) {
	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), acceptTimeout)
	defer cancel()

	principal, ok := h.principal(ctx, c, sock)
	if !ok {
		return
	}

	raw := c.Param("room_id")
	if raw == "" {
		ws.CloseWith(sock, ws.CloseMissingIdent, "room_id required")
		return
	}
	roomID, err := uuid.Parse(raw)
	if err != nil {
		ws.CloseWith(sock, ws.CloseRoomUnresolvable, "invalid room id")
		return
	}

	if _, ok := h.acceptRoom(ctx, sock, roomID, principal); !ok {
		return
	}

	consumer := ws.NewSignalConsumer(sock, principal, roomID, h.fabric)
	go consumer.Run(context.Background())
}

// principal authenticates the socket from the ?token query or Authorization
// header, closing with 4003 on failure
func (h *WSHandler) principal(ctx context.Context, c *gin.Context, sock *websocket.Conn) (model.UserRef, bool) {
	token := c.Query("token")
	if token == "" {
		token = middleware.TokenFromHeader(c.GetHeader("Authorization"))
	}

	principal, err := h.authService.PrincipalFromToken(ctx, token)
	if err != nil {
		ws.CloseWith(sock, ws.CloseUnauthenticated, "unauthenticated")
		return model.UserRef{}, false
	}
	return *principal, true
}

// acceptRoom resolves the room and enforces participation under the accept
// deadline, closing with the matching code on failure
func (h *WSHandler) acceptRoom(ctx context.Context, sock *websocket.Conn, roomID uuid.UUID, principal model.UserRef) (*model.Room, bool) {
	room, err := h.roomService.ResolveRoom(ctx, roomID)
	if err != nil {
		ws.CloseWith(sock, ws.CloseRoomUnresolvable, "room not found")
		return nil, false
	}

	ok, err := h.authService.IsParticipant(ctx, room.ID, principal.ID)
	if err != nil {
		ws.CloseWith(sock, ws.CloseGeneric, "participant check failed")
		return nil, false
	}
	if !ok {
		ws.CloseWith(sock, ws.CloseNotParticipant, "not a participant")
		return nil, false
	}
	return room, true
}
