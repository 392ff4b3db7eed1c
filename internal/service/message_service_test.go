package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/startuphub/backend/internal/mocks"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
)

func TestSendMessageAnnotatesSenderFromCache(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	fabric := new(mocks.FabricMock)
	svc := NewMessageService(msgs, rooms, fabric, NewUserCache(users, nil))

	sender := model.UserRef{ID: uuid.New(), Username: "alice"}
	roomID := uuid.New()
	msgID := uuid.New()
	content := "hello"

	rooms.On("IsParticipant", mock.Anything, roomID, sender.ID).Return(true, nil)
	rooms.On("TouchUpdatedAt", roomID).Return(nil)
	msgs.On("Create", mock.AnythingOfType("*model.Message")).Run(func(args mock.Arguments) {
		args.Get(0).(*model.Message).ID = msgID
	}).Return(nil)
	// the re-select comes back without the sender relation loaded
	msgs.On("FindByID", msgID).Return(&model.Message{
		ID: msgID, RoomID: roomID, SenderID: sender.ID,
		MessageType: model.MessageTypeText, Content: &content,
	}, nil)
	users.On("FindByID", sender.ID).Return(&model.User{ID: sender.ID, Username: "alice"}, nil)
	fabric.On("Publish", mock.Anything, pubsub.RoomGroup(roomID.String()), sender.ID.String(), mock.Anything).Return(nil)

	msg, err := svc.SendMessage(context.Background(), sender, model.SendMessageRequest{
		RoomID:  roomID,
		Content: &content,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.Sender.Username)

	// the fanned-out envelope carries the annotated sender
	fabric.AssertExpectations(t)
	raw := fabric.Calls[0].Arguments.Get(3).([]byte)
	var frame struct {
		Type    string `json:"type"`
		Message struct {
			Sender struct {
				Username string `json:"username"`
			} `json:"sender"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, model.FrameChatMessage, frame.Type)
	assert.Equal(t, "alice", frame.Message.Sender.Username)
}

func TestSendMessageRequiresParticipation(t *testing.T) {
	msgs := new(mocks.MessageRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	fabric := new(mocks.FabricMock)
	svc := NewMessageService(msgs, rooms, fabric, nil)

	sender := model.UserRef{ID: uuid.New(), Username: "mallory"}
	roomID := uuid.New()
	content := "hello"
	rooms.On("IsParticipant", mock.Anything, roomID, sender.ID).Return(false, nil)

	_, err := svc.SendMessage(context.Background(), sender, model.SendMessageRequest{
		RoomID:  roomID,
		Content: &content,
	})
	assert.ErrorIs(t, err, ErrNotParticipant)
	msgs.AssertNotCalled(t, "Create", mock.Anything)
}
