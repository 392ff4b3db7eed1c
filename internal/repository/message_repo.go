package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository abstracts message and read-receipt persistence.
type MessageRepository interface {
	Create(msg *model.Message) error
	FindByID(id uuid.UUID) (*model.Message, error)
	GetRoomMessages(roomID uuid.UUID, page, limit int) ([]model.Message, error)
	GetLastMessage(roomID uuid.UUID) (*model.Message, error)
	MarkRead(messageID, userID uuid.UUID, at time.Time) error
	CountReaders(messageID uuid.UUID) (int64, error)
	SetIsRead(messageID uuid.UUID) error
	CountUnread(roomID, userID uuid.UUID) (int64, error)
}

// MessageRepo is the GORM implementation of MessageRepository.
type MessageRepo struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a new message
func (r *MessageRepo) Create(msg *model.Message) error {
	return r.db.Create(msg).Error
}

// FindByID finds a message by ID
func (r *MessageRepo) FindByID(id uuid.UUID) (*model.Message, error) {
	var msg model.Message
	err := r.db.
		Preload("Sender").
		Preload("ReadBy").
		Where("id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetRoomMessages returns one page of a room's history, newest first
func (r *MessageRepo) GetRoomMessages(roomID uuid.UUID, page, limit int) ([]model.Message, error) {
	messages := []model.Message{}
	if page < 1 {
		page = 1
	}
	err := r.db.
		Preload("Sender").
		Preload("ReadBy").
		Where("room_id = ?", roomID).
		Order("sent_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// GetLastMessage returns the most recent message in a room
func (r *MessageRepo) GetLastMessage(roomID uuid.UUID) (*model.Message, error) {
	var msg model.Message
	err := r.db.
		Preload("Sender").
		Where("room_id = ?", roomID).
		Order("sent_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead records a read acknowledgement; acknowledging twice is a no-op
func (r *MessageRepo) MarkRead(messageID, userID uuid.UUID, at time.Time) error {
	read := model.MessageRead{
		MessageID: messageID,
		UserID:    userID,
		ReadAt:    at,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&read).Error
}

// CountReaders returns how many distinct users have read a message
func (r *MessageRepo) CountReaders(messageID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.MessageRead{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	return count, err
}

// SetIsRead flips the message-level read flag once every recipient has
// acknowledged it
func (r *MessageRepo) SetIsRead(messageID uuid.UUID) error {
	return r.db.Model(&model.Message{}).
		Where("id = ?", messageID).
		Update("is_read", true).Error
}

// CountUnread counts messages in a room the user has neither sent nor read
func (r *MessageRepo) CountUnread(roomID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("room_id = ? AND sender_id != ?", roomID, userID).
		Where("id NOT IN (?)", r.db.Model(&model.MessageRead{}).
			Select("message_id").
			Where("user_id = ?", userID)).
		Count(&count).Error
	return count, err
}
