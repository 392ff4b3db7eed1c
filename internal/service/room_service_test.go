package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/startuphub/backend/internal/config"
	"github.com/startuphub/backend/internal/mocks"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
	"github.com/startuphub/backend/pkg/auth"
)

type roomMocks struct {
	rooms  *mocks.RoomRepositoryMock
	users  *mocks.UserRepositoryMock
	msgs   *mocks.MessageRepositoryMock
	calls  *mocks.CallRepositoryMock
	fabric *mocks.FabricMock
}

func newRoomFixture() (*RoomService, *roomMocks) {
	m := &roomMocks{
		rooms:  new(mocks.RoomRepositoryMock),
		users:  new(mocks.UserRepositoryMock),
		msgs:   new(mocks.MessageRepositoryMock),
		calls:  new(mocks.CallRepositoryMock),
		fabric: new(mocks.FabricMock),
	}
	svc := NewRoomService(m.rooms, m.users, m.msgs, m.calls, m.fabric,
		auth.NewSessionTokenManager("test-secret", time.Hour), config.WebRTCConfig{})
	return svc, m
}

func TestFindOrCreateDirectFirstContact(t *testing.T) {
	svc, m := newRoomFixture()
	alice := &model.User{ID: uuid.New(), Username: "alice"}
	bob := &model.User{ID: uuid.New(), Username: "bob"}
	name := model.DirectRoomName("alice", "bob")
	roomID := uuid.New()

	m.users.On("FindByUsername", "alice").Return(alice, nil)
	m.users.On("FindByUsername", "bob").Return(bob, nil)
	m.rooms.On("FindDirectByName", name).Return(nil, gorm.ErrRecordNotFound).Once()
	m.rooms.On("CreateDirect", mock.AnythingOfType("*model.Room")).Run(func(args mock.Arguments) {
		args.Get(0).(*model.Room).ID = roomID
	}).Return(nil)
	m.rooms.On("FindDirectByName", name).Return(&model.Room{
		ID: roomID, Name: name, RoomType: model.RoomTypeDirect, MaxParticipants: 2,
	}, nil).Once()

	room, created, err := svc.FindOrCreateDirect("alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, roomID, room.ID)
	assert.Equal(t, name, room.Name)

	// both users are seeded as participants on the insert
	inserted := m.rooms.Calls[1].Arguments.Get(0).(*model.Room)
	require.Len(t, inserted.Participants, 2)
	assert.Equal(t, model.RoomTypeDirect, inserted.RoomType)
	assert.Equal(t, 2, inserted.MaxParticipants)
}

func TestFindOrCreateDirectReturnsExistingRoom(t *testing.T) {
	svc, m := newRoomFixture()
	alice := &model.User{ID: uuid.New(), Username: "alice"}
	bob := &model.User{ID: uuid.New(), Username: "bob"}
	name := model.DirectRoomName("alice", "bob")
	existing := &model.Room{ID: uuid.New(), Name: name, RoomType: model.RoomTypeDirect}

	m.users.On("FindByUsername", "alice").Return(alice, nil)
	m.users.On("FindByUsername", "bob").Return(bob, nil)
	m.rooms.On("FindDirectByName", name).Return(existing, nil)

	room, created, err := svc.FindOrCreateDirect("alice", "bob")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, room.ID)
	m.rooms.AssertNotCalled(t, "CreateDirect", mock.Anything)
}

func TestFindOrCreateDirectLostInsertRaceReturnsWinner(t *testing.T) {
	svc, m := newRoomFixture()
	alice := &model.User{ID: uuid.New(), Username: "alice"}
	bob := &model.User{ID: uuid.New(), Username: "bob"}
	name := model.DirectRoomName("alice", "bob")
	winnerID := uuid.New()

	m.users.On("FindByUsername", "alice").Return(alice, nil)
	m.users.On("FindByUsername", "bob").Return(bob, nil)
	m.rooms.On("FindDirectByName", name).Return(nil, gorm.ErrRecordNotFound).Once()
	m.rooms.On("CreateDirect", mock.AnythingOfType("*model.Room")).Run(func(args mock.Arguments) {
		args.Get(0).(*model.Room).ID = uuid.New()
	}).Return(nil)
	// the concurrent winner's row comes back from the re-select
	m.rooms.On("FindDirectByName", name).Return(&model.Room{
		ID: winnerID, Name: name, RoomType: model.RoomTypeDirect,
	}, nil).Once()

	room, created, err := svc.FindOrCreateDirect("alice", "bob")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winnerID, room.ID)
}

func TestFindOrCreateDirectUnknownUser(t *testing.T) {
	svc, m := newRoomFixture()
	alice := &model.User{ID: uuid.New(), Username: "alice"}
	m.users.On("FindByUsername", "alice").Return(alice, nil)
	m.users.On("FindByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, _, err := svc.FindOrCreateDirect("alice", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	m.rooms.AssertNotCalled(t, "CreateDirect", mock.Anything)
}

func TestAddParticipantRejectsFullRoom(t *testing.T) {
	svc, m := newRoomFixture()
	principal := model.UserRef{ID: uuid.New(), Username: "alice"}
	carol := &model.User{ID: uuid.New(), Username: "carol"}
	room := &model.Room{ID: uuid.New(), Name: "standup", RoomType: model.RoomTypeGroup, MaxParticipants: 2}

	m.rooms.On("IsParticipant", mock.Anything, room.ID, principal.ID).Return(true, nil)
	m.rooms.On("FindByID", mock.Anything, room.ID).Return(room, nil)
	m.users.On("FindByUsername", "carol").Return(carol, nil)
	m.rooms.On("CountParticipants", room.ID).Return(int64(2), nil)

	_, err := svc.AddParticipant(context.Background(), room.ID, principal, model.AddParticipantRequest{Username: "carol"})
	assert.ErrorIs(t, err, ErrRoomFull)
	m.rooms.AssertNotCalled(t, "AddParticipant", mock.Anything)
	m.fabric.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddParticipantUnboundedRoomSkipsTheCount(t *testing.T) {
	svc, m := newRoomFixture()
	principal := model.UserRef{ID: uuid.New(), Username: "alice"}
	carol := &model.User{ID: uuid.New(), Username: "carol"}
	room := &model.Room{ID: uuid.New(), Name: "townhall", RoomType: model.RoomTypeGroup, MaxParticipants: 0}

	m.rooms.On("IsParticipant", mock.Anything, room.ID, principal.ID).Return(true, nil)
	m.rooms.On("FindByID", mock.Anything, room.ID).Return(room, nil)
	m.users.On("FindByUsername", "carol").Return(carol, nil)
	m.rooms.On("AddParticipant", mock.AnythingOfType("*model.Participant")).Return(nil)
	m.fabric.On("Publish", mock.Anything, pubsub.RoomGroup(room.ID.String()), principal.ID.String(), mock.Anything).Return(nil)

	p, err := svc.AddParticipant(context.Background(), room.ID, principal, model.AddParticipantRequest{Username: "carol"})
	require.NoError(t, err)
	assert.Equal(t, carol.ID, p.UserID)
	m.rooms.AssertNotCalled(t, "CountParticipants", mock.Anything)
	m.fabric.AssertExpectations(t)
}

type ctxKey string

func TestResolveRoomForwardsCallerContext(t *testing.T) {
	svc, m := newRoomFixture()
	room := &model.Room{ID: uuid.New(), Name: "standup", RoomType: model.RoomTypeGroup}

	// the socket accept path runs under a deadline, so the exact context
	// must reach the repository rather than a fresh background one
	ctx := context.WithValue(context.Background(), ctxKey("trace"), "accept")
	m.rooms.On("FindByID", ctx, room.ID).Return(room, nil)

	got, err := svc.ResolveRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)
	m.rooms.AssertExpectations(t)
}

func TestAddParticipantInvisibleRoom(t *testing.T) {
	svc, m := newRoomFixture()
	principal := model.UserRef{ID: uuid.New(), Username: "alice"}
	roomID := uuid.New()

	m.rooms.On("IsParticipant", mock.Anything, roomID, principal.ID).Return(false, nil)

	_, err := svc.AddParticipant(context.Background(), roomID, principal, model.AddParticipantRequest{Username: "carol"})
	assert.ErrorIs(t, err, ErrNotFound)
	m.rooms.AssertNotCalled(t, "AddParticipant", mock.Anything)
}
