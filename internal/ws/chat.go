package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/startuphub/backend/internal/media"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
	"github.com/startuphub/backend/internal/service"
)

// ChatConsumer owns one chat WebSocket: its socket, its principal, its room,
// and the set of groups it joined. Ingress is a single read loop dispatching
// on frame type; egress is the bounded queue drained by the write loop.
type ChatConsumer struct {
	*conn
	room *model.Room

	fabric        pubsub.Fabric
	rooms         *service.RoomService
	messages      *service.MessageService
	notifications *service.NotificationService
	gateway       *media.Gateway

	joined []string
}

func NewChatConsumer(
	ws *websocket.Conn,
	principal model.UserRef,
	room *model.Room,
	fabric pubsub.Fabric,
	rooms *service.RoomService,
	messages *service.MessageService,
	notifications *service.NotificationService,
	gateway *media.Gateway,
) *ChatConsumer {
	return &ChatConsumer{
		conn:          newConn(ws, principal),
		room:          room,
		fabric:        fabric,
		rooms:         rooms,
		messages:      messages,
		notifications: notifications,
		gateway:       gateway,
	}
}

// Run joins the room and user groups, announces the join, and pumps frames
// until the socket closes. Teardown runs on every exit path.
func (c *ChatConsumer) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.join(pubsub.RoomGroup(c.room.ID.String()))
	c.join(pubsub.UserGroup(c.principal.ID.String()))
	defer c.teardown()

	if err := c.rooms.TouchPresence(c.room.ID, c.principal.ID); err != nil {
		log.Printf("chat: touch presence: %v", err)
	}

	fanout(ctx, c.fabric, pubsub.RoomGroup(c.room.ID.String()), c.UserID(), map[string]any{
		"type":     model.FrameUserJoined,
		"user_id":  c.principal.ID.String(),
		"username": c.principal.Username,
	})

	go c.writeLoop(ctx)
	c.readLoop(func(data []byte) {
		c.handleFrame(ctx, data)
	})
}

func (c *ChatConsumer) join(group string) {
	c.fabric.Join(group, c)
	c.joined = append(c.joined, group)
}

// teardown releases every joined group, clears presence, and announces the
// leave. It must stay safe to run after an abnormal close.
func (c *ChatConsumer) teardown() {
	for _, group := range c.joined {
		c.fabric.Leave(group, c)
	}
	c.joined = nil

	if err := c.rooms.ClearPresence(c.room.ID, c.principal.ID); err != nil {
		log.Printf("chat: clear presence: %v", err)
	}

	fanout(context.Background(), c.fabric, pubsub.RoomGroup(c.room.ID.String()), c.UserID(), map[string]any{
		"type":     model.FrameUserLeft,
		"user_id":  c.principal.ID.String(),
		"username": c.principal.Username,
	})
}

func (c *ChatConsumer) handleFrame(ctx context.Context, data []byte) {
	var frame model.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.sendError("malformed frame")
		return
	}

	switch frame.Type {
	case "text_message":
		c.handleTextMessage(ctx, frame)
	case "image_message":
		c.handleMediaMessage(ctx, frame, model.MediaTypeImage, frame.Image)
	case "video_message":
		c.handleMediaMessage(ctx, frame, model.MediaTypeVideo, frame.Video)
	case "audio_message":
		c.handleMediaMessage(ctx, frame, model.MediaTypeAudio, frame.Audio)
	case "typing":
		fanout(ctx, c.fabric, pubsub.RoomGroup(c.room.ID.String()), c.UserID(), map[string]any{
			"type":      model.FrameTypingStatus,
			"user_id":   c.principal.ID.String(),
			"username":  c.principal.Username,
			"is_typing": frame.IsTyping,
		})
	case "start_call":
		if _, err := c.rooms.StartCall(ctx, c.principal, c.room.ID, frame.CallType); err != nil {
			c.sendError(err.Error())
		}
	case "end_call":
		if _, err := c.rooms.EndCall(ctx, c.principal, c.room.ID, frame.CallType, frame.CallStatus, frame.CallDuration); err != nil {
			c.sendError(err.Error())
		}
	case "message_read":
		c.handleMessageRead(ctx, frame)
	case "call_response":
		c.handleCallResponse(ctx, frame)
	case "incoming_call_status":
		c.handleIncomingCallStatus(ctx, frame)
	case "webrtc_offer":
		c.relay(ctx, map[string]any{"type": model.FrameOffer, "offer": frame.Offer})
	case "webrtc_answer":
		c.relay(ctx, map[string]any{"type": model.FrameAnswer, "answer": frame.Answer})
	case "ice_candidate":
		c.relay(ctx, map[string]any{"type": model.FrameICECandidate, "candidate": frame.Candidate})
	default:
		c.sendError("unknown frame type: " + frame.Type)
	}
}

func (c *ChatConsumer) handleTextMessage(ctx context.Context, frame model.Frame) {
	content := frame.Content
	_, err := c.messages.SendMessage(ctx, c.principal, model.SendMessageRequest{
		RoomID:      c.room.ID,
		Content:     &content,
		MessageType: model.MessageTypeText,
	})
	if err != nil {
		c.sendError(err.Error())
	}
}

func (c *ChatConsumer) handleMediaMessage(ctx context.Context, frame model.Frame, mediaType model.MediaType, payload string) {
	blob, ext, err := media.DecodeBase64Payload(payload)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	res, err := c.gateway.Upload(ctx, mediaType, "upload."+ext, blob)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	req := model.SendMessageRequest{RoomID: c.room.ID}
	if frame.Caption != "" {
		caption := frame.Caption
		req.Content = &caption
	}
	switch mediaType {
	case model.MediaTypeImage:
		req.MessageType = model.MessageTypeImage
		req.Image = res.URL
	case model.MediaTypeVideo:
		req.MessageType = model.MessageTypeVideo
		req.Video = res.URL
		// thumbnail travels in content so clients can render a poster
		req.Content = &res.ThumbnailURL
	case model.MediaTypeAudio:
		req.MessageType = model.MessageTypeAudio
		req.Audio = res.URL
	}

	if _, err := c.messages.SendMessage(ctx, c.principal, req); err != nil {
		c.sendError(err.Error())
	}
}

func (c *ChatConsumer) handleMessageRead(ctx context.Context, frame model.Frame) {
	messageID, err := uuid.Parse(frame.MessageID)
	if err != nil {
		c.sendError("invalid message_id")
		return
	}
	if err := c.messages.MarkRead(ctx, messageID, c.principal.ID); err != nil {
		c.sendError(err.Error())
		return
	}
	fanout(ctx, c.fabric, pubsub.RoomGroup(c.room.ID.String()), c.UserID(), map[string]any{
		"type":       model.FrameMessageRead,
		"message_id": messageID.String(),
		"user_id":    c.principal.ID.String(),
	})
}

func (c *ChatConsumer) handleCallResponse(ctx context.Context, frame model.Frame) {
	invitationID, err := uuid.Parse(frame.InvitationID)
	if err != nil {
		c.sendError("invalid invitation_id")
		return
	}
	accept := frame.Response == "accepted" || frame.Response == "accept"
	if _, err := c.rooms.RespondInvitation(ctx, c.principal, invitationID, accept); err != nil {
		c.sendError(err.Error())
	}
}

func (c *ChatConsumer) handleIncomingCallStatus(ctx context.Context, frame model.Frame) {
	notificationID, err := uuid.Parse(frame.NotificationID)
	if err != nil {
		c.sendError("invalid notification_id")
		return
	}
	if _, err := c.notifications.Transition(ctx, c.principal, notificationID, frame.Status); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.sendError("only the recipient may update an incoming call")
			return
		}
		c.sendError(err.Error())
	}
}

// relay forwards signaling frames for clients that multiplex WebRTC on the
// chat socket; the dedicated signaling endpoint is the preferred path
func (c *ChatConsumer) relay(ctx context.Context, frame map[string]any) {
	fanout(ctx, c.fabric, pubsub.RoomGroup(c.room.ID.String()), c.UserID(), frame)
}
