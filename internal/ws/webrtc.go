package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
)

// SignalConsumer is the dedicated WebRTC signaling endpoint for one room. It
// is a dumb relay: offers, answers, and candidates pass through untouched,
// tagged with the sender.
type SignalConsumer struct {
	*conn
	roomID uuid.UUID
	fabric pubsub.Fabric
	joined []string
}

func NewSignalConsumer(ws *websocket.Conn, principal model.UserRef, roomID uuid.UUID, fabric pubsub.Fabric) *SignalConsumer {
	return &SignalConsumer{
		conn:   newConn(ws, principal),
		roomID: roomID,
		fabric: fabric,
	}
}

// Run joins the signaling group, announces the peer, and relays frames until
// the socket closes.
func (c *SignalConsumer) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group := pubsub.WebRTCGroup(c.roomID.String())
	c.fabric.Join(group, c)
	c.joined = append(c.joined, group)
	defer c.teardown()

	fanout(ctx, c.fabric, group, c.UserID(), map[string]any{
		"type":     model.FramePeerJoined,
		"user_id":  c.principal.ID.String(),
		"username": c.principal.Username,
	})

	go c.writeLoop(ctx)
	c.readLoop(func(data []byte) {
		c.handleFrame(ctx, data)
	})
}

func (c *SignalConsumer) teardown() {
	for _, group := range c.joined {
		c.fabric.Leave(group, c)
	}
	c.joined = nil

	fanout(context.Background(), c.fabric, pubsub.WebRTCGroup(c.roomID.String()), c.UserID(), map[string]any{
		"type":     model.FramePeerLeft,
		"user_id":  c.principal.ID.String(),
		"username": c.principal.Username,
	})
}

func (c *SignalConsumer) handleFrame(ctx context.Context, data []byte) {
	var frame model.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.sendError("malformed frame")
		return
	}

	group := pubsub.WebRTCGroup(c.roomID.String())
	switch frame.Type {
	case "offer":
		fanout(ctx, c.fabric, group, c.UserID(), map[string]any{
			"type":  model.FrameOffer,
			"offer": frame.Offer,
		})
	case "answer":
		fanout(ctx, c.fabric, group, c.UserID(), map[string]any{
			"type":   model.FrameAnswer,
			"answer": frame.Answer,
		})
	case "ice_candidate":
		fanout(ctx, c.fabric, group, c.UserID(), map[string]any{
			"type":      model.FrameICECandidate,
			"candidate": frame.Candidate,
		})
	case "screen_share":
		fanout(ctx, c.fabric, group, c.UserID(), map[string]any{
			"type":       model.FrameScreenShare,
			"user_id":    c.principal.ID.String(),
			"username":   c.principal.Username,
			"is_sharing": frame.IsSharing,
		})
	default:
		c.sendError("unknown frame type: " + frame.Type)
	}
}
