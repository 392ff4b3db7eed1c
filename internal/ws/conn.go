package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Media frames carry base64 blobs, so the read limit tracks the upload cap
	maxFrameSize = 80 << 20

	sendQueueSize = 256
)

// Close codes used on the accept path.
const (
	CloseGeneric          = 4000
	CloseUnauthenticated  = 4003
	CloseMissingIdent     = 4004
	CloseNotParticipant   = 4005
	CloseRoomUnresolvable = 4006
)

// conn wraps one WebSocket with a bounded outbound queue. It implements
// pubsub.Subscriber so consumers can hand it straight to the fabric.
type conn struct {
	ws        *websocket.Conn
	send      chan []byte
	principal model.UserRef
}

func newConn(ws *websocket.Conn, principal model.UserRef) *conn {
	return &conn{
		ws:        ws,
		send:      make(chan []byte, sendQueueSize),
		principal: principal,
	}
}

func (c *conn) UserID() string { return c.principal.ID.String() }

// Deliver queues a frame for the write loop. A full queue means the client
// stopped reading; the fabric drops the subscriber in response.
func (c *conn) Deliver(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// sendFrame queues a locally generated frame to this connection only
func (c *conn) sendFrame(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("ws: encode frame: %v", err)
		return
	}
	c.Deliver(data)
}

// sendError reports a recoverable error to the peer without dropping the
// socket
func (c *conn) sendError(message string) {
	c.sendFrame(map[string]any{
		"type":    model.FrameError,
		"message": message,
	})
}

// readLoop pumps inbound frames to handler until the socket dies
func (c *conn) readLoop(handler func(data []byte)) {
	defer c.ws.Close()

	c.ws.SetReadLimit(maxFrameSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read: %v", err)
			}
			return
		}
		handler(message)
	}
}

// writeLoop drains the send queue to the socket, one frame per message,
// keeping the connection alive with pings
func (c *conn) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseWith writes a close frame to an upgraded socket and shuts it. Used by
// the upgrade handlers when the accept protocol fails.
func CloseWith(ws *websocket.Conn, code int, reason string) {
	ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	ws.Close()
}

// fanout encodes a frame and publishes it. Best-effort, mirrors the service
// layer's policy.
func fanout(ctx context.Context, fabric pubsub.Fabric, group, senderID string, frame map[string]any) {
	if senderID != "" {
		frame["sender_id"] = senderID
	}
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("ws: encode for %s: %v", group, err)
		return
	}
	if err := fabric.Publish(ctx, group, senderID, data); err != nil {
		log.Printf("ws: publish to %s: %v", group, err)
	}
}
