package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/pubsub"
	"github.com/startuphub/backend/internal/repository"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 100
	maxPageSize     = 100
)

// MessageService handles message business logic
type MessageService struct {
	msgRepo  repository.MessageRepository
	roomRepo repository.RoomRepository
	fabric   pubsub.Fabric
	users    *UserCache
}

func NewMessageService(
	msgRepo repository.MessageRepository,
	roomRepo repository.RoomRepository,
	fabric pubsub.Fabric,
	users *UserCache,
) *MessageService {
	return &MessageService{
		msgRepo:  msgRepo,
		roomRepo: roomRepo,
		fabric:   fabric,
		users:    users,
	}
}

// SendMessage persists a message for the room and fans it out to every other
// connected participant
func (s *MessageService) SendMessage(ctx context.Context, sender model.UserRef, req model.SendMessageRequest) (*model.Message, error) {
	ok, err := s.roomRepo.IsParticipant(ctx, req.RoomID, sender.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	msgType := req.MessageType
	if msgType == "" {
		msgType = model.MessageTypeText
	}

	msg := &model.Message{
		RoomID:      req.RoomID,
		SenderID:    sender.ID,
		Content:     req.Content,
		MessageType: msgType,
		Image:       req.Image,
		Video:       req.Video,
		Audio:       req.Audio,
		Document:    req.Document,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CallType:    req.CallType,
		CallStatus:  req.CallStatus,
		SentAt:      time.Now(),
	}
	if err := msg.ValidatePayload(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}
	_ = s.roomRepo.TouchUpdatedAt(req.RoomID)

	msg, err = s.msgRepo.FindByID(msg.ID)
	if err != nil {
		return nil, err
	}

	// sender annotation on the outbound envelope comes from the user cache
	if s.users != nil {
		if ref, err := s.users.Get(ctx, msg.SenderID); err == nil {
			msg.Sender = model.User{ID: ref.ID, Username: ref.Username}
		}
	}

	publish(ctx, s.fabric, pubsub.RoomGroup(req.RoomID.String()), sender.ID.String(), map[string]any{
		"type":    model.FrameChatMessage,
		"message": msg,
	})

	return msg, nil
}

// GetRoomMessages returns one reverse-chronological page of a room's history.
// Rooms the principal does not participate in are not visible.
func (s *MessageService) GetRoomMessages(ctx context.Context, roomID, userID uuid.UUID, page, limit int) ([]model.Message, error) {
	ok, err := s.roomRepo.IsParticipant(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return s.msgRepo.GetRoomMessages(roomID, page, limit)
}

// MarkRead records the user's read acknowledgement and flips the message's
// is_read flag once every non-sender participant has acknowledged
func (s *MessageService) MarkRead(ctx context.Context, messageID, userID uuid.UUID) error {
	msg, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if msg.SenderID == userID {
		return nil
	}

	ok, err := s.roomRepo.IsParticipant(ctx, msg.RoomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}

	if err := s.msgRepo.MarkRead(messageID, userID, time.Now()); err != nil {
		return err
	}

	readers, err := s.msgRepo.CountReaders(messageID)
	if err != nil {
		return err
	}
	total, err := s.roomRepo.CountParticipants(msg.RoomID)
	if err != nil {
		return err
	}
	if readers >= total-1 {
		return s.msgRepo.SetIsRead(messageID)
	}
	return nil
}
