package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/startuphub/backend/internal/pubsub"
)

// publish encodes a frame and hands it to the fabric. Fan-out is best-effort:
// failures are logged, never surfaced to the caller. A non-empty senderID is
// stamped into the frame and excludes the sender's own connections on
// delivery.
func publish(ctx context.Context, fabric pubsub.Fabric, group, senderID string, frame map[string]any) {
	if senderID != "" {
		frame["sender_id"] = senderID
	}
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("fanout: encode for %s: %v", group, err)
		return
	}
	if err := fabric.Publish(ctx, group, senderID, data); err != nil {
		log.Printf("fanout: publish to %s: %v", group, err)
	}
}
