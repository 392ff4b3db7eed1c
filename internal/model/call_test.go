package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotificationStatusIsTerminal(t *testing.T) {
	assert.False(t, NotificationPending.IsTerminal())
	assert.False(t, NotificationSeen.IsTerminal())

	assert.True(t, NotificationAccepted.IsTerminal())
	assert.True(t, NotificationDeclined.IsTerminal())
	assert.True(t, NotificationMissed.IsTerminal())
	assert.True(t, NotificationExpired.IsTerminal())
}

func TestNotificationIsExpired(t *testing.T) {
	now := time.Now()
	n := &IncomingCallNotification{ExpiresAt: now.Add(NotificationTTL)}

	assert.False(t, n.IsExpired(now))
	assert.False(t, n.IsExpired(now.Add(NotificationTTL-time.Second)))
	// the deadline itself counts as expired
	assert.True(t, n.IsExpired(now.Add(NotificationTTL)))
	assert.True(t, n.IsExpired(now.Add(2*NotificationTTL)))
}
