package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnUserID(t *testing.T) {
	principal := model.UserRef{ID: uuid.New(), Username: "alice"}
	c := newConn(nil, principal)

	assert.Equal(t, principal.ID.String(), c.UserID())
}

func TestConnDeliverDropsWhenQueueFull(t *testing.T) {
	c := newConn(nil, model.UserRef{ID: uuid.New()})

	for i := 0; i < sendQueueSize; i++ {
		require.True(t, c.Deliver([]byte("frame")))
	}
	assert.False(t, c.Deliver([]byte("one too many")))
}

func TestConnSendError(t *testing.T) {
	c := newConn(nil, model.UserRef{ID: uuid.New()})

	c.sendError("unknown message type")

	var frame map[string]string
	require.NoError(t, json.Unmarshal(<-c.send, &frame))
	assert.Equal(t, model.FrameError, frame["type"])
	assert.Equal(t, "unknown message type", frame["message"])
}
