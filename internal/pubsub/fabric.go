package pubsub

import (
	"context"
	"encoding/json"
)

// Envelope is the unit of fan-out. Data carries the already-encoded frame
// that subscribers forward to their sockets verbatim.
type Envelope struct {
	Group    string          `json:"group"`
	SenderID string          `json:"sender_id,omitempty"`
	Data     json.RawMessage `json:"data"`
}

// Subscriber is one receiving endpoint, typically a WebSocket connection.
// Deliver must not block; it returns false when the subscriber can no longer
// accept data and should be dropped from its groups.
type Subscriber interface {
	// UserID identifies the principal behind the connection. Envelopes whose
	// SenderID matches it are not delivered (a sender never echoes to itself).
	UserID() string
	Deliver(data []byte) bool
}

// Fabric fans encoded frames out to named groups across all instances.
type Fabric interface {
	Join(group string, sub Subscriber)
	Leave(group string, sub Subscriber)
	// Publish sends data to every member of group on every instance,
	// excluding subscribers whose UserID equals senderID. An empty senderID
	// means no exclusion: every member receives the frame.
	Publish(ctx context.Context, group, senderID string, data []byte) error
}

// registry tracks group membership on this instance. Both fabric
// implementations share it.
type registry struct {
	groups map[string]map[Subscriber]bool
}

func newRegistry() *registry {
	return &registry{groups: make(map[string]map[Subscriber]bool)}
}

func (r *registry) join(group string, sub Subscriber) {
	if _, ok := r.groups[group]; !ok {
		r.groups[group] = make(map[Subscriber]bool)
	}
	r.groups[group][sub] = true
}

func (r *registry) leave(group string, sub Subscriber) {
	if members, ok := r.groups[group]; ok {
		delete(members, sub)
		if len(members) == 0 {
			delete(r.groups, group)
		}
	}
}

// deliver fans env out to local members of its group, removing any
// subscriber that reports a full buffer.
func (r *registry) deliver(env *Envelope) {
	members, ok := r.groups[env.Group]
	if !ok {
		return
	}
	for sub := range members {
		if env.SenderID != "" && env.SenderID == sub.UserID() {
			continue
		}
		if !sub.Deliver(env.Data) {
			delete(members, sub)
		}
	}
	if len(members) == 0 {
		delete(r.groups, env.Group)
	}
}
