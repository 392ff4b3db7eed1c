package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSub struct {
	userID   string
	received [][]byte
	full     bool
}

func (s *fakeSub) UserID() string { return s.userID }

func (s *fakeSub) Deliver(data []byte) bool {
	if s.full {
		return false
	}
	s.received = append(s.received, data)
	return true
}

func TestMemoryFabricDeliversToGroupMembers(t *testing.T) {
	f := NewMemoryFabric()
	a := &fakeSub{userID: "alice"}
	b := &fakeSub{userID: "bob"}

	f.Join("room_1", a)
	f.Join("room_1", b)

	err := f.Publish(context.Background(), "room_1", "", []byte(`{"type":"chat_message"}`))
	assert.NoError(t, err)

	assert.Len(t, a.received, 1)
	assert.Len(t, b.received, 1)
	assert.JSONEq(t, `{"type":"chat_message"}`, string(a.received[0]))
}

func TestMemoryFabricExcludesSender(t *testing.T) {
	f := NewMemoryFabric()
	a := &fakeSub{userID: "alice"}
	b := &fakeSub{userID: "bob"}

	f.Join("room_1", a)
	f.Join("room_1", b)

	err := f.Publish(context.Background(), "room_1", "alice", []byte(`{}`))
	assert.NoError(t, err)

	assert.Empty(t, a.received)
	assert.Len(t, b.received, 1)
}

func TestMemoryFabricEmptySenderReachesEveryone(t *testing.T) {
	f := NewMemoryFabric()
	a := &fakeSub{userID: "alice"}
	b := &fakeSub{userID: "bob"}

	f.Join("user_alice", a)
	f.Join("user_alice", b)

	err := f.Publish(context.Background(), "user_alice", "", []byte(`{}`))
	assert.NoError(t, err)

	assert.Len(t, a.received, 1)
	assert.Len(t, b.received, 1)
}

func TestMemoryFabricIgnoresUnknownGroup(t *testing.T) {
	f := NewMemoryFabric()
	a := &fakeSub{userID: "alice"}
	f.Join("room_1", a)

	err := f.Publish(context.Background(), "room_2", "", []byte(`{}`))
	assert.NoError(t, err)
	assert.Empty(t, a.received)
}

func TestMemoryFabricLeaveStopsDelivery(t *testing.T) {
	f := NewMemoryFabric()
	a := &fakeSub{userID: "alice"}

	f.Join("room_1", a)
	f.Leave("room_1", a)

	err := f.Publish(context.Background(), "room_1", "", []byte(`{}`))
	assert.NoError(t, err)
	assert.Empty(t, a.received)
}

func TestMemoryFabricDropsFullSubscriber(t *testing.T) {
	f := NewMemoryFabric()
	stuck := &fakeSub{userID: "alice", full: true}
	ok := &fakeSub{userID: "bob"}

	f.Join("room_1", stuck)
	f.Join("room_1", ok)

	assert.NoError(t, f.Publish(context.Background(), "room_1", "", []byte(`{}`)))
	assert.Len(t, ok.received, 1)

	// The stuck subscriber was removed, a later publish never reaches it.
	stuck.full = false
	assert.NoError(t, f.Publish(context.Background(), "room_1", "", []byte(`{}`)))
	assert.Empty(t, stuck.received)
	assert.Len(t, ok.received, 2)
}

func TestMemoryFabricSubscriberInMultipleGroups(t *testing.T) {
	f := NewMemoryFabric()
	a := &fakeSub{userID: "alice"}

	f.Join("room_1", a)
	f.Join("user_alice", a)

	assert.NoError(t, f.Publish(context.Background(), "room_1", "", []byte(`{"n":1}`)))
	assert.NoError(t, f.Publish(context.Background(), "user_alice", "", []byte(`{"n":2}`)))

	assert.Len(t, a.received, 2)
}
