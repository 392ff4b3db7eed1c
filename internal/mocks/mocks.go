package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/startuphub/backend/internal/model"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *UserRepositoryMock) FindByID(id uuid.UUID) (*model.User, error) {
	args := m.Called(id)
	var user *model.User
	if val := args.Get(0); val != nil {
		user = val.(*model.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) FindByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	var user *model.User
	if val := args.Get(0); val != nil {
		user = val.(*model.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) CreateToken(token *model.AuthToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *UserRepositoryMock) FindTokenUser(key string) (*model.User, error) {
	args := m.Called(key)
	var user *model.User
	if val := args.Get(0); val != nil {
		user = val.(*model.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) FindTokenByUser(userID uuid.UUID) (*model.AuthToken, error) {
	args := m.Called(userID)
	var token *model.AuthToken
	if val := args.Get(0); val != nil {
		token = val.(*model.AuthToken)
	}
	return token, args.Error(1)
}

func (m *UserRepositoryMock) DeleteToken(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) Create(room *model.Room) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *RoomRepositoryMock) FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	args := m.Called(ctx, id)
	var room *model.Room
	if val := args.Get(0); val != nil {
		room = val.(*model.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) FindDirectByName(name string) (*model.Room, error) {
	args := m.Called(name)
	var room *model.Room
	if val := args.Get(0); val != nil {
		room = val.(*model.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) CreateDirect(room *model.Room) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *RoomRepositoryMock) GetUserRooms(userID uuid.UUID) ([]model.Room, error) {
	args := m.Called(userID)
	var rooms []model.Room
	if val := args.Get(0); val != nil {
		rooms = val.([]model.Room)
	}
	return rooms, args.Error(1)
}

func (m *RoomRepositoryMock) AddParticipant(p *model.Participant) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *RoomRepositoryMock) RemoveParticipant(roomID, userID uuid.UUID) error {
	args := m.Called(roomID, userID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) CountParticipants(roomID uuid.UUID) (int64, error) {
	args := m.Called(roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RoomRepositoryMock) GetParticipants(roomID uuid.UUID) ([]model.Participant, error) {
	args := m.Called(roomID)
	var participants []model.Participant
	if val := args.Get(0); val != nil {
		participants = val.([]model.Participant)
	}
	return participants, args.Error(1)
}

func (m *RoomRepositoryMock) UpdateLastActive(roomID, userID uuid.UUID, at time.Time) error {
	args := m.Called(roomID, userID, at)
	return args.Error(0)
}

func (m *RoomRepositoryMock) ClearLastActive(roomID, userID uuid.UUID) error {
	args := m.Called(roomID, userID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) TouchUpdatedAt(roomID uuid.UUID) error {
	args := m.Called(roomID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(msg *model.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MessageRepositoryMock) FindByID(id uuid.UUID) (*model.Message, error) {
	args := m.Called(id)
	var msg *model.Message
	if val := args.Get(0); val != nil {
		msg = val.(*model.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetRoomMessages(roomID uuid.UUID, page, limit int) ([]model.Message, error) {
	args := m.Called(roomID, page, limit)
	var msgs []model.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]model.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetLastMessage(roomID uuid.UUID) (*model.Message, error) {
	args := m.Called(roomID)
	var msg *model.Message
	if val := args.Get(0); val != nil {
		msg = val.(*model.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(messageID, userID uuid.UUID, at time.Time) error {
	args := m.Called(messageID, userID, at)
	return args.Error(0)
}

func (m *MessageRepositoryMock) CountReaders(messageID uuid.UUID) (int64, error) {
	args := m.Called(messageID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) SetIsRead(messageID uuid.UUID) error {
	args := m.Called(messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) CountUnread(roomID, userID uuid.UUID) (int64, error) {
	args := m.Called(roomID, userID)
	return args.Get(0).(int64), args.Error(1)
}

type CallRepositoryMock struct {
	mock.Mock
}

func (m *CallRepositoryMock) CreateNotification(n *model.IncomingCallNotification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *CallRepositoryMock) FindNotificationByID(id uuid.UUID) (*model.IncomingCallNotification, error) {
	args := m.Called(id)
	var n *model.IncomingCallNotification
	if val := args.Get(0); val != nil {
		n = val.(*model.IncomingCallNotification)
	}
	return n, args.Error(1)
}

func (m *CallRepositoryMock) ListActiveForRecipient(recipientID uuid.UUID) ([]model.IncomingCallNotification, error) {
	args := m.Called(recipientID)
	var list []model.IncomingCallNotification
	if val := args.Get(0); val != nil {
		list = val.([]model.IncomingCallNotification)
	}
	return list, args.Error(1)
}

func (m *CallRepositoryMock) TransitionNotification(id uuid.UUID, to model.NotificationStatus) (bool, error) {
	args := m.Called(id, to)
	return args.Bool(0), args.Error(1)
}

func (m *CallRepositoryMock) MarkSeen(id uuid.UUID) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *CallRepositoryMock) ExpireOutdated(now time.Time) ([]model.IncomingCallNotification, error) {
	args := m.Called(now)
	var expired []model.IncomingCallNotification
	if val := args.Get(0); val != nil {
		expired = val.([]model.IncomingCallNotification)
	}
	return expired, args.Error(1)
}

func (m *CallRepositoryMock) CreateInvitation(inv *model.CallInvitation) error {
	args := m.Called(inv)
	return args.Error(0)
}

func (m *CallRepositoryMock) FindInvitationByID(id uuid.UUID) (*model.CallInvitation, error) {
	args := m.Called(id)
	var inv *model.CallInvitation
	if val := args.Get(0); val != nil {
		inv = val.(*model.CallInvitation)
	}
	return inv, args.Error(1)
}

func (m *CallRepositoryMock) ExpireOutdatedInvitations(now time.Time) error {
	args := m.Called(now)
	return args.Error(0)
}

func (m *CallRepositoryMock) UpdateInvitationStatus(id uuid.UUID, status model.InvitationStatus) (bool, error) {
	args := m.Called(id, status)
	return args.Bool(0), args.Error(1)
}

func (m *CallRepositoryMock) CreateCallLog(cl *model.CallLog) error {
	args := m.Called(cl)
	return args.Error(0)
}

func (m *CallRepositoryMock) FindOpenCallLog(a, b uuid.UUID) (*model.CallLog, error) {
	args := m.Called(a, b)
	var cl *model.CallLog
	if val := args.Get(0); val != nil {
		cl = val.(*model.CallLog)
	}
	return cl, args.Error(1)
}

func (m *CallRepositoryMock) CloseCallLog(id uuid.UUID, status model.CallStatus, endedAt time.Time, duration int) error {
	args := m.Called(id, status, endedAt, duration)
	return args.Error(0)
}

type MediaRepositoryMock struct {
	mock.Mock
}

func (m *MediaRepositoryMock) Create(f *model.MediaFile) error {
	args := m.Called(f)
	return args.Error(0)
}

func (m *MediaRepositoryMock) FindByID(id uuid.UUID) (*model.MediaFile, error) {
	args := m.Called(id)
	var f *model.MediaFile
	if val := args.Get(0); val != nil {
		f = val.(*model.MediaFile)
	}
	return f, args.Error(1)
}

func (m *MediaRepositoryMock) Update(f *model.MediaFile) error {
	args := m.Called(f)
	return args.Error(0)
}

func (m *MediaRepositoryMock) ListForUser(userID uuid.UUID) ([]model.MediaFile, error) {
	args := m.Called(userID)
	var files []model.MediaFile
	if val := args.Get(0); val != nil {
		files = val.([]model.MediaFile)
	}
	return files, args.Error(1)
}

func (m *MediaRepositoryMock) Delete(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}
