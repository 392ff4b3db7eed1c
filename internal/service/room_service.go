package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/config"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
	"github.com/startuphub/backend/internal/repository"
	"github.com/startuphub/backend/pkg/auth"
	"gorm.io/gorm"
)

// RoomService handles room and call business logic
type RoomService struct {
	roomRepo repository.RoomRepository
	userRepo repository.UserRepository
	msgRepo  repository.MessageRepository
	callRepo repository.CallRepository
	fabric   pubsub.Fabric
	sessions *auth.SessionTokenManager
	webrtc   config.WebRTCConfig
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	msgRepo repository.MessageRepository,
	callRepo repository.CallRepository,
	fabric pubsub.Fabric,
	sessions *auth.SessionTokenManager,
	webrtc config.WebRTCConfig,
) *RoomService {
	return &RoomService{
		roomRepo: roomRepo,
		userRepo: userRepo,
		msgRepo:  msgRepo,
		callRepo: callRepo,
		fabric:   fabric,
		sessions: sessions,
		webrtc:   webrtc,
	}
}

// GetUserRooms returns the principal's rooms with their latest message
func (s *RoomService) GetUserRooms(userID uuid.UUID) ([]model.Room, error) {
	rooms, err := s.roomRepo.GetUserRooms(userID)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		lastMsg, err := s.msgRepo.GetLastMessage(rooms[i].ID)
		if err == nil {
			rooms[i].LastMessage = lastMsg
		}
	}
	return rooms, nil
}

// CreateRoom creates a room with the principal as participant and admin
func (s *RoomService) CreateRoom(ctx context.Context, creator model.UserRef, req model.CreateRoomRequest) (*model.Room, error) {
	room := &model.Room{
		Name:            req.Name,
		RoomType:        req.RoomType,
		MaxParticipants: req.MaxParticipants,
		ProfileImage:    req.ProfileImage,
		IsActive:        true,
		Participants: []model.Participant{
			{
				UserID:   creator.ID,
				JoinedAt: time.Now(),
				IsAdmin:  true,
			},
		},
	}

	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	return s.roomRepo.FindByID(ctx, room.ID)
}

// GetRoom retrieves a room the principal participates in. Rooms the principal
// does not participate in are not visible.
func (s *RoomService) GetRoom(ctx context.Context, roomID, userID uuid.UUID) (*model.Room, error) {
	ok, err := s.roomRepo.IsParticipant(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

// ResolveRoom fetches a room by id with no visibility check. The socket
// accept path checks participation separately so it can pick the right close
// code.
func (s *RoomService) ResolveRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

// AddParticipant adds a user to a room by id or username and announces the
// join to the room
func (s *RoomService) AddParticipant(ctx context.Context, roomID uuid.UUID, principal model.UserRef, req model.AddParticipantRequest) (*model.Participant, error) {
	room, err := s.GetRoom(ctx, roomID, principal.ID)
	if err != nil {
		return nil, err
	}

	var target *model.User
	switch {
	case req.UserID != nil:
		target, err = s.userRepo.FindByID(*req.UserID)
	case req.Username != "":
		target, err = s.userRepo.FindByUsername(req.Username)
	default:
		return nil, ErrValidation
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if room.MaxParticipants > 0 {
		count, err := s.roomRepo.CountParticipants(roomID)
		if err != nil {
			return nil, err
		}
		if count >= int64(room.MaxParticipants) {
			return nil, ErrRoomFull
		}
	}

	participant := &model.Participant{
		UserID:   target.ID,
		RoomID:   roomID,
		JoinedAt: time.Now(),
	}
	if err := s.roomRepo.AddParticipant(participant); err != nil {
		return nil, err
	}
	participant.User = *target

	publish(ctx, s.fabric, pubsub.RoomGroup(roomID.String()), principal.ID.String(), map[string]any{
		"type":    model.FrameParticipantAdded,
		"room_id": roomID.String(),
		"user":    target.Ref(),
	})

	return participant, nil
}

// StartCall creates call invitations for every other participant, records the
// initiated call message, and announces the call to the room
func (s *RoomService) StartCall(ctx context.Context, principal model.UserRef, roomID uuid.UUID, callType model.CallType) (*model.Message, error) {
	if callType == "" {
		callType = model.CallTypeAudio
	}

	ok, err := s.roomRepo.IsParticipant(ctx, roomID, principal.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	participants, err := s.roomRepo.GetParticipants(roomID)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(model.NotificationTTL)
	for _, p := range participants {
		if p.UserID == principal.ID {
			continue
		}
		inv := &model.CallInvitation{
			InviterID: principal.ID,
			InviteeID: p.UserID,
			RoomID:    roomID,
			CallType:  callType,
			ExpiresAt: expiresAt,
			Status:    model.InvitationPending,
		}
		if err := s.callRepo.CreateInvitation(inv); err != nil {
			log.Printf("start_call: invitation for %s: %v", p.UserID, err)
			continue
		}
		publish(ctx, s.fabric, pubsub.UserGroup(p.UserID.String()), principal.ID.String(), map[string]any{
			"type":       model.FrameCallInvitation,
			"invitation": inv,
		})
	}

	// one receiver means one call log row, so only two-party rooms get one
	if len(participants) == 2 {
		for _, p := range participants {
			if p.UserID == principal.ID {
				continue
			}
			cl := &model.CallLog{
				CallerID:   principal.ID,
				ReceiverID: p.UserID,
				CallType:   callType,
				StartTime:  time.Now(),
				Status:     model.CallStatusInitiated,
			}
			if err := s.callRepo.CreateCallLog(cl); err != nil {
				log.Printf("start_call: call log: %v", err)
			}
		}
	}

	msg := &model.Message{
		RoomID:      roomID,
		SenderID:    principal.ID,
		MessageType: model.MessageTypeCall,
		CallType:    callType,
		CallStatus:  model.CallStatusInitiated,
		SentAt:      time.Now(),
	}
	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}
	msg, err = s.msgRepo.FindByID(msg.ID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.fabric, pubsub.RoomGroup(roomID.String()), principal.ID.String(), map[string]any{
		"type": model.FrameCallNotification,
		"call": msg,
	})

	return msg, nil
}

// EndCall records the final call message and closes the open call log, if any
func (s *RoomService) EndCall(ctx context.Context, principal model.UserRef, roomID uuid.UUID, callType model.CallType, status model.CallStatus, duration *int) (*model.Message, error) {
	if callType == "" {
		callType = model.CallTypeAudio
	}
	if status == "" {
		status = model.CallStatusAnswered
	}

	ok, err := s.roomRepo.IsParticipant(ctx, roomID, principal.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	msg := &model.Message{
		RoomID:       roomID,
		SenderID:     principal.ID,
		MessageType:  model.MessageTypeCall,
		CallType:     callType,
		CallStatus:   status,
		CallDuration: duration,
		SentAt:       time.Now(),
	}
	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}
	msg, err = s.msgRepo.FindByID(msg.ID)
	if err != nil {
		return nil, err
	}

	// best-effort close of the open two-party call log
	participants, err := s.roomRepo.GetParticipants(roomID)
	if err == nil && len(participants) == 2 {
		for _, p := range participants {
			if p.UserID == principal.ID {
				continue
			}
			if cl, err := s.callRepo.FindOpenCallLog(principal.ID, p.UserID); err == nil {
				d := 0
				if duration != nil {
					d = *duration
				}
				if err := s.callRepo.CloseCallLog(cl.ID, status, time.Now(), d); err != nil {
					log.Printf("end_call: close call log: %v", err)
				}
			}
		}
	}

	publish(ctx, s.fabric, pubsub.RoomGroup(roomID.String()), principal.ID.String(), map[string]any{
		"type": model.FrameCallNotification,
		"call": msg,
	})

	return msg, nil
}

// RespondInvitation lets an invitee accept or decline a call invitation and
// announces the response to the room
func (s *RoomService) RespondInvitation(ctx context.Context, principal model.UserRef, invitationID uuid.UUID, accept bool) (*model.CallInvitation, error) {
	inv, err := s.callRepo.FindInvitationByID(invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if inv.InviteeID != principal.ID {
		return nil, ErrForbidden
	}

	status := model.InvitationDeclined
	response := "declined"
	if accept {
		status = model.InvitationAccepted
		response = "accepted"
	}
	if time.Now().After(inv.ExpiresAt) {
		status = model.InvitationExpired
		response = "expired"
	}

	if _, err := s.callRepo.UpdateInvitationStatus(inv.ID, status); err != nil {
		return nil, err
	}
	inv.Status = status

	publish(ctx, s.fabric, pubsub.RoomGroup(inv.RoomID.String()), principal.ID.String(), map[string]any{
		"type":          model.FrameCallResponse,
		"invitation_id": inv.ID.String(),
		"response":      response,
		"user_id":       principal.ID.String(),
	})

	return inv, nil
}

// WebRTCConfig returns the ICE servers, media constraints, and a short-lived
// signaling session token for one room
func (s *RoomService) WebRTCConfig(ctx context.Context, roomID uuid.UUID, principal model.UserRef) (*model.WebRTCConfigResponse, error) {
	room, err := s.GetRoom(ctx, roomID, principal.ID)
	if err != nil {
		return nil, err
	}

	ice := make([]model.ICEServer, 0, len(s.webrtc.STUNServers)+len(s.webrtc.TURNServers))
	for _, u := range s.webrtc.STUNServers {
		ice = append(ice, model.ICEServer{URLs: u})
	}
	for _, u := range s.webrtc.TURNServers {
		ice = append(ice, model.ICEServer{
			URLs:       u,
			Username:   s.webrtc.TURNUser,
			Credential: s.webrtc.TURNSecret,
		})
	}

	token, err := s.sessions.GenerateToken(principal.ID, principal.Username, roomID)
	if err != nil {
		return nil, err
	}

	return &model.WebRTCConfigResponse{
		RoomConfig: room,
		ICEServers: ice,
		MediaConstraints: map[string]any{
			"audio": true,
			"video": true,
		},
		Token: token,
	}, nil
}

// TouchPresence stamps the participant's last_active on connect
func (s *RoomService) TouchPresence(roomID, userID uuid.UUID) error {
	return s.roomRepo.UpdateLastActive(roomID, userID, time.Now())
}

// ClearPresence nulls last_active on graceful disconnect
func (s *RoomService) ClearPresence(roomID, userID uuid.UUID) error {
	return s.roomRepo.ClearLastActive(roomID, userID)
}

// FindDirect looks up (never creates) the direct room between the principal
// and the named user
func (s *RoomService) FindDirect(principal model.UserRef, otherUsername string) (*model.Room, error) {
	if otherUsername == "" {
		return nil, ErrValidation
	}
	name := model.DirectRoomName(principal.Username, otherUsername)
	room, err := s.roomRepo.FindDirectByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

// FindOrCreateDirect resolves the direct room between two usernames, creating
// it with both participants on first contact. Concurrent first invocations
// converge on one room: the insert is guarded by the unique index on direct
// room names and losers re-select the winner.
func (s *RoomService) FindOrCreateDirect(username1, username2 string) (*model.Room, bool, error) {
	userA, err := s.userRepo.FindByUsername(username1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}
	userB, err := s.userRepo.FindByUsername(username2)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	name := model.DirectRoomName(userA.Username, userB.Username)
	room, err := s.roomRepo.FindDirectByName(name)
	if err == nil {
		return room, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	now := time.Now()
	candidate := &model.Room{
		Name:            name,
		RoomType:        model.RoomTypeDirect,
		MaxParticipants: 2,
		IsActive:        true,
		Participants: []model.Participant{
			{UserID: userA.ID, JoinedAt: now},
			{UserID: userB.ID, JoinedAt: now},
		},
	}
	if err := s.roomRepo.CreateDirect(candidate); err != nil {
		return nil, false, err
	}

	// re-select by name so a lost race still returns the winning row
	room, err = s.roomRepo.FindDirectByName(name)
	if err != nil {
		return nil, false, err
	}
	return room, room.ID == candidate.ID, nil
}
