package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/startuphub/backend/internal/mocks"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
)

type notifyMocks struct {
	calls  *mocks.CallRepositoryMock
	rooms  *mocks.RoomRepositoryMock
	msgs   *mocks.MessageRepositoryMock
	fabric *mocks.FabricMock
	push   *mocks.PushSenderMock
}

func newNotificationFixture() (*NotificationService, *notifyMocks) {
	m := &notifyMocks{
		calls:  new(mocks.CallRepositoryMock),
		rooms:  new(mocks.RoomRepositoryMock),
		msgs:   new(mocks.MessageRepositoryMock),
		fabric: new(mocks.FabricMock),
		push:   new(mocks.PushSenderMock),
	}
	svc := NewNotificationService(m.calls, m.rooms, m.msgs, m.fabric, m.push, nil, 15*time.Second)
	return svc, m
}

func pendingNotification(caller, recipient uuid.UUID) *model.IncomingCallNotification {
	return &model.IncomingCallNotification{
		ID:          uuid.New(),
		CallerID:    caller,
		RecipientID: recipient,
		RoomID:      uuid.New(),
		CallType:    model.CallTypeAudio,
		Status:      model.NotificationPending,
		ExpiresAt:   time.Now().Add(model.NotificationTTL),
		Caller:      model.User{ID: caller, Username: "alice"},
		Recipient:   model.User{ID: recipient, Username: "bob"},
		Room:        model.Room{Name: "Chat between alice and bob", RoomType: model.RoomTypeDirect},
	}
}

func TestTransitionRejectsUnknownTarget(t *testing.T) {
	svc, m := newNotificationFixture()
	recipient := model.UserRef{ID: uuid.New(), Username: "bob"}

	for _, target := range []model.NotificationStatus{
		model.NotificationExpired,
		model.NotificationPending,
		model.NotificationStatus("answered"),
		model.NotificationStatus(""),
	} {
		_, err := svc.Transition(context.Background(), recipient, uuid.New(), target)
		assert.ErrorIs(t, err, ErrValidation, "target %q must be rejected", target)
	}

	// an invalid target must not touch the store at all
	m.calls.AssertNotCalled(t, "FindNotificationByID", mock.Anything)
	m.calls.AssertNotCalled(t, "TransitionNotification", mock.Anything, mock.Anything)
	m.fabric.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionOnlyRecipientMayAnswer(t *testing.T) {
	svc, m := newNotificationFixture()
	n := pendingNotification(uuid.New(), uuid.New())
	m.calls.On("FindNotificationByID", n.ID).Return(n, nil)

	stranger := model.UserRef{ID: uuid.New(), Username: "mallory"}
	_, err := svc.Transition(context.Background(), stranger, n.ID, model.NotificationAccepted)
	assert.ErrorIs(t, err, ErrForbidden)
	m.calls.AssertNotCalled(t, "TransitionNotification", mock.Anything, mock.Anything)
}

func TestTransitionSeenFromPending(t *testing.T) {
	svc, m := newNotificationFixture()
	n := pendingNotification(uuid.New(), uuid.New())
	recipient := model.UserRef{ID: n.RecipientID, Username: "bob"}

	m.calls.On("FindNotificationByID", n.ID).Return(n, nil)
	m.calls.On("MarkSeen", n.ID).Return(true, nil)
	m.fabric.On("Publish", mock.Anything, pubsub.UserGroup(n.CallerID.String()), recipient.ID.String(), mock.Anything).Return(nil)

	got, err := svc.Transition(context.Background(), recipient, n.ID, model.NotificationSeen)
	require.NoError(t, err)
	require.NotNil(t, got)
	m.calls.AssertCalled(t, "MarkSeen", n.ID)
	m.calls.AssertNotCalled(t, "TransitionNotification", mock.Anything, mock.Anything)
	m.fabric.AssertExpectations(t)
}

func TestTransitionAcceptedAnnouncesAnsweredCall(t *testing.T) {
	svc, m := newNotificationFixture()
	n := pendingNotification(uuid.New(), uuid.New())
	recipient := model.UserRef{ID: n.RecipientID, Username: "bob"}

	accepted := *n
	accepted.Status = model.NotificationAccepted
	m.calls.On("FindNotificationByID", n.ID).Return(n, nil).Once()
	m.calls.On("FindNotificationByID", n.ID).Return(&accepted, nil).Once()
	m.calls.On("TransitionNotification", n.ID, model.NotificationAccepted).Return(true, nil)

	callMsg := &model.Message{
		ID:          uuid.New(),
		RoomID:      n.RoomID,
		SenderID:    n.CallerID,
		MessageType: model.MessageTypeCall,
		CallType:    n.CallType,
		CallStatus:  model.CallStatusAnswered,
		Sender:      model.User{ID: n.CallerID, Username: "alice"},
	}
	m.msgs.On("Create", mock.AnythingOfType("*model.Message")).Return(nil)
	m.msgs.On("FindByID", mock.Anything).Return(callMsg, nil)

	// the caller hears about the acceptance on their user channel
	m.fabric.On("Publish", mock.Anything, pubsub.UserGroup(n.CallerID.String()), recipient.ID.String(), mock.Anything).Return(nil)
	// the answered-call message goes to the room with no sender, so caller
	// and recipient alike receive it
	m.fabric.On("Publish", mock.Anything, pubsub.RoomGroup(n.RoomID.String()), "", mock.Anything).Return(nil)

	got, err := svc.Transition(context.Background(), recipient, n.ID, model.NotificationAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationAccepted, got.Status)

	// the companion message is attributed to the caller
	created := m.msgs.Calls[0].Arguments.Get(0).(*model.Message)
	assert.Equal(t, n.CallerID, created.SenderID)
	assert.Equal(t, model.CallStatusAnswered, created.CallStatus)
	m.fabric.AssertExpectations(t)
}

func TestTransitionTerminalStatesAreFixedPoints(t *testing.T) {
	for _, terminal := range []model.NotificationStatus{
		model.NotificationAccepted,
		model.NotificationDeclined,
		model.NotificationMissed,
		model.NotificationExpired,
	} {
		svc, m := newNotificationFixture()
		n := pendingNotification(uuid.New(), uuid.New())
		n.Status = terminal
		recipient := model.UserRef{ID: n.RecipientID, Username: "bob"}
		m.calls.On("FindNotificationByID", n.ID).Return(n, nil)

		got, err := svc.Transition(context.Background(), recipient, n.ID, model.NotificationDeclined)
		require.NoError(t, err)
		assert.Equal(t, terminal, got.Status, "terminal %q must be returned unchanged", terminal)
		m.calls.AssertNotCalled(t, "TransitionNotification", mock.Anything, mock.Anything)
		m.calls.AssertNotCalled(t, "MarkSeen", mock.Anything)
		m.fabric.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestTransitionPastDeadlineIsForcedToExpired(t *testing.T) {
	svc, m := newNotificationFixture()
	n := pendingNotification(uuid.New(), uuid.New())
	n.ExpiresAt = time.Now().Add(-time.Second)
	recipient := model.UserRef{ID: n.RecipientID, Username: "bob"}

	m.calls.On("FindNotificationByID", n.ID).Return(n, nil)
	m.calls.On("TransitionNotification", n.ID, model.NotificationExpired).Return(true, nil)
	m.fabric.On("Publish", mock.Anything, pubsub.UserGroup(n.CallerID.String()), recipient.ID.String(), mock.Anything).Return(nil)

	_, err := svc.Transition(context.Background(), recipient, n.ID, model.NotificationAccepted)
	require.NoError(t, err)
	m.calls.AssertCalled(t, "TransitionNotification", n.ID, model.NotificationExpired)
}

func TestTransitionMissedSurvivesTheDeadline(t *testing.T) {
	svc, m := newNotificationFixture()
	n := pendingNotification(uuid.New(), uuid.New())
	n.ExpiresAt = time.Now().Add(-time.Second)
	recipient := model.UserRef{ID: n.RecipientID, Username: "bob"}

	m.calls.On("FindNotificationByID", n.ID).Return(n, nil)
	m.calls.On("TransitionNotification", n.ID, model.NotificationMissed).Return(true, nil)
	m.fabric.On("Publish", mock.Anything, pubsub.UserGroup(n.CallerID.String()), recipient.ID.String(), mock.Anything).Return(nil)

	_, err := svc.Transition(context.Background(), recipient, n.ID, model.NotificationMissed)
	require.NoError(t, err)
	m.calls.AssertCalled(t, "TransitionNotification", n.ID, model.NotificationMissed)
}

func TestTransitionLosingTheRaceReturnsCurrentState(t *testing.T) {
	svc, m := newNotificationFixture()
	n := pendingNotification(uuid.New(), uuid.New())
	recipient := model.UserRef{ID: n.RecipientID, Username: "bob"}

	declined := *n
	declined.Status = model.NotificationDeclined
	m.calls.On("FindNotificationByID", n.ID).Return(n, nil).Once()
	m.calls.On("FindNotificationByID", n.ID).Return(&declined, nil).Once()
	m.calls.On("TransitionNotification", n.ID, model.NotificationAccepted).Return(false, nil)

	got, err := svc.Transition(context.Background(), recipient, n.ID, model.NotificationAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationDeclined, got.Status)
	m.msgs.AssertNotCalled(t, "Create", mock.Anything)
	m.fabric.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepNotifiesCallersOfExpiry(t *testing.T) {
	svc, m := newNotificationFixture()
	n := pendingNotification(uuid.New(), uuid.New())
	n.Status = model.NotificationExpired

	m.calls.On("ExpireOutdatedInvitations", mock.Anything).Return(nil)
	m.calls.On("ExpireOutdated", mock.Anything).Return([]model.IncomingCallNotification{*n}, nil)
	// expiry updates carry no sender: nothing is excluded on delivery
	m.fabric.On("Publish", mock.Anything, pubsub.UserGroup(n.CallerID.String()), "", mock.Anything).Return(nil)

	require.NoError(t, svc.Sweep(context.Background()))
	m.fabric.AssertExpectations(t)
}

func TestSweepWithNothingOutstanding(t *testing.T) {
	svc, m := newNotificationFixture()
	m.calls.On("ExpireOutdatedInvitations", mock.Anything).Return(nil)
	m.calls.On("ExpireOutdated", mock.Anything).Return([]model.IncomingCallNotification{}, nil)

	require.NoError(t, svc.Sweep(context.Background()))
	m.fabric.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
