package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/startuphub/backend/internal/middleware"
	"github.com/startuphub/backend/internal/mocks"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
	"github.com/startuphub/backend/internal/service"
)

type callFixture struct {
	router *gin.Engine
	users  *mocks.UserRepositoryMock
	rooms  *mocks.RoomRepositoryMock
	calls  *mocks.CallRepositoryMock
	msgs   *mocks.MessageRepositoryMock
	fabric *mocks.FabricMock
}

// newCallFixture stands up the incoming-call routes behind the real auth
// middleware, with every repository mocked out.
func newCallFixture() *callFixture {
	gin.SetMode(gin.TestMode)

	f := &callFixture{
		users:  new(mocks.UserRepositoryMock),
		rooms:  new(mocks.RoomRepositoryMock),
		calls:  new(mocks.CallRepositoryMock),
		msgs:   new(mocks.MessageRepositoryMock),
		fabric: new(mocks.FabricMock),
	}

	authService := service.NewAuthService(f.users, f.rooms, nil)
	notifications := service.NewNotificationService(
		f.calls, f.rooms, f.msgs, f.fabric, new(mocks.PushSenderMock), nil, 15*time.Second)
	h := NewCallHandler(notifications)

	f.router = gin.New()
	group := f.router.Group("/communication")
	group.Use(middleware.AuthMiddleware(authService))
	group.POST("/incoming-calls/", h.Create)
	group.GET("/incoming-calls/", h.ListActive)
	group.PUT("/incoming-calls/:id/", h.Update)
	return f
}

func (f *callFixture) asUser(key string, user *model.User) {
	f.users.On("FindTokenUser", key).Return(user, nil)
}

func (f *callFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateIncomingCallRings(t *testing.T) {
	f := newCallFixture()
	caller := &model.User{ID: uuid.New(), Username: "alice"}
	recipient := &model.User{ID: uuid.New(), Username: "bob"}
	roomID := uuid.New()
	f.asUser("alice-key", caller)

	f.rooms.On("IsParticipant", mock.Anything, roomID, caller.ID).Return(true, nil)
	f.rooms.On("IsParticipant", mock.Anything, roomID, recipient.ID).Return(true, nil)
	f.calls.On("CreateNotification", mock.AnythingOfType("*model.IncomingCallNotification")).Run(func(args mock.Arguments) {
		args.Get(0).(*model.IncomingCallNotification).ID = uuid.New()
	}).Return(nil)
	f.calls.On("FindNotificationByID", mock.Anything).Return(&model.IncomingCallNotification{
		ID:          uuid.New(),
		CallerID:    caller.ID,
		RecipientID: recipient.ID,
		RoomID:      roomID,
		CallType:    model.CallTypeVideo,
		Status:      model.NotificationPending,
		ExpiresAt:   time.Now().Add(model.NotificationTTL),
		Room:        model.Room{Name: "Chat between alice and bob", RoomType: model.RoomTypeDirect},
	}, nil)
	// the ring reaches the recipient's user channel and, for a direct room,
	// the room channel too
	f.fabric.On("Publish", mock.Anything, pubsub.UserGroup(recipient.ID.String()), caller.ID.String(), mock.Anything).Return(nil)
	f.fabric.On("Publish", mock.Anything, pubsub.RoomGroup(roomID.String()), caller.ID.String(), mock.Anything).Return(nil)

	rec := f.do(http.MethodPost, "/communication/incoming-calls/", "alice-key", model.CreateIncomingCallRequest{
		RecipientID: recipient.ID,
		RoomID:      roomID,
		CallType:    model.CallTypeVideo,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got model.IncomingCallNotification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.NotificationPending, got.Status)
	assert.Equal(t, "Chat between alice and bob", got.RoomName)
	f.fabric.AssertExpectations(t)
}

func TestUpdateIncomingCallAccepted(t *testing.T) {
	f := newCallFixture()
	caller := &model.User{ID: uuid.New(), Username: "alice"}
	recipient := &model.User{ID: uuid.New(), Username: "bob"}
	f.asUser("bob-key", recipient)

	n := &model.IncomingCallNotification{
		ID:          uuid.New(),
		CallerID:    caller.ID,
		RecipientID: recipient.ID,
		RoomID:      uuid.New(),
		CallType:    model.CallTypeAudio,
		Status:      model.NotificationPending,
		ExpiresAt:   time.Now().Add(model.NotificationTTL),
	}
	accepted := *n
	accepted.Status = model.NotificationAccepted

	f.calls.On("FindNotificationByID", n.ID).Return(n, nil).Once()
	f.calls.On("FindNotificationByID", n.ID).Return(&accepted, nil).Once()
	f.calls.On("TransitionNotification", n.ID, model.NotificationAccepted).Return(true, nil)
	f.msgs.On("Create", mock.AnythingOfType("*model.Message")).Return(nil)
	f.msgs.On("FindByID", mock.Anything).Return(&model.Message{
		ID: uuid.New(), RoomID: n.RoomID, SenderID: caller.ID,
		MessageType: model.MessageTypeCall, CallStatus: model.CallStatusAnswered,
	}, nil)
	f.fabric.On("Publish", mock.Anything, pubsub.UserGroup(caller.ID.String()), recipient.ID.String(), mock.Anything).Return(nil)
	// the answered-call announcement goes to the room without a sender so
	// neither party is excluded
	f.fabric.On("Publish", mock.Anything, pubsub.RoomGroup(n.RoomID.String()), "", mock.Anything).Return(nil)

	rec := f.do(http.MethodPut, fmt.Sprintf("/communication/incoming-calls/%s/", n.ID), "bob-key",
		model.UpdateIncomingCallRequest{Status: model.NotificationAccepted})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got model.IncomingCallNotification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.NotificationAccepted, got.Status)
	f.fabric.AssertExpectations(t)
}

func TestUpdateIncomingCallRejectsReservedStatus(t *testing.T) {
	f := newCallFixture()
	recipient := &model.User{ID: uuid.New(), Username: "bob"}
	f.asUser("bob-key", recipient)

	// expired is deadline-only, pending is the initial state: neither may be
	// requested by a client
	for _, status := range []string{"expired", "pending", "bogus"} {
		rec := f.do(http.MethodPut, fmt.Sprintf("/communication/incoming-calls/%s/", uuid.New()), "bob-key",
			map[string]string{"status": status})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "status %q", status)
	}
	f.calls.AssertNotCalled(t, "TransitionNotification", mock.Anything, mock.Anything)
}

func TestUpdateIncomingCallForbiddenForNonRecipient(t *testing.T) {
	f := newCallFixture()
	stranger := &model.User{ID: uuid.New(), Username: "mallory"}
	f.asUser("mallory-key", stranger)

	n := &model.IncomingCallNotification{
		ID:          uuid.New(),
		CallerID:    uuid.New(),
		RecipientID: uuid.New(),
		Status:      model.NotificationPending,
		ExpiresAt:   time.Now().Add(model.NotificationTTL),
	}
	f.calls.On("FindNotificationByID", n.ID).Return(n, nil)

	rec := f.do(http.MethodPut, fmt.Sprintf("/communication/incoming-calls/%s/", n.ID), "mallory-key",
		model.UpdateIncomingCallRequest{Status: model.NotificationDeclined})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIncomingCallsRequireAuth(t *testing.T) {
	f := newCallFixture()

	req := httptest.NewRequest(http.MethodGet, "/communication/incoming-calls/", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
