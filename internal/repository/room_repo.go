package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomRepository abstracts room and participant persistence. FindByID and
// IsParticipant take a context because they sit on the WebSocket accept path,
// which runs under a hard deadline.
type RoomRepository interface {
	Create(room *model.Room) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	FindDirectByName(name string) (*model.Room, error)
	CreateDirect(room *model.Room) error
	GetUserRooms(userID uuid.UUID) ([]model.Room, error)
	AddParticipant(p *model.Participant) error
	RemoveParticipant(roomID, userID uuid.UUID) error
	IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	CountParticipants(roomID uuid.UUID) (int64, error)
	GetParticipants(roomID uuid.UUID) ([]model.Participant, error)
	UpdateLastActive(roomID, userID uuid.UUID, at time.Time) error
	ClearLastActive(roomID, userID uuid.UUID) error
	TouchUpdatedAt(roomID uuid.UUID) error
}

// RoomRepo is the GORM implementation of RoomRepository.
type RoomRepo struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// Create creates a new room together with its participants
func (r *RoomRepo) Create(room *model.Room) error {
	return r.db.Create(room).Error
}

// FindByID finds a room by ID with its participants
func (r *RoomRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Preload("Participants.User").
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindDirectByName looks up a direct room by its canonical name
func (r *RoomRepo) FindDirectByName(name string) (*model.Room, error) {
	var room model.Room
	err := r.db.
		Preload("Participants.User").
		Where("name = ? AND room_type = ?", name, model.RoomTypeDirect).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateDirect inserts a direct room guarded by the partial unique index on
// direct room names. A concurrent insert of the same name is swallowed;
// callers re-select by name afterwards to get the winning row.
func (r *RoomRepo) CreateDirect(room *model.Room) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(room).Error
}

// GetUserRooms returns all active rooms the user participates in, ordered by
// latest activity
func (r *RoomRepo) GetUserRooms(userID uuid.UUID) ([]model.Room, error) {
	var rooms []model.Room
	err := r.db.
		Joins("JOIN participants ON participants.room_id = rooms.id").
		Where("participants.user_id = ? AND rooms.is_active = ?", userID, true).
		Preload("Participants.User").
		Order("rooms.updated_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// AddParticipant adds a user to a room; re-adding is a no-op
func (r *RoomRepo) AddParticipant(p *model.Participant) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(p).Error
}

// RemoveParticipant removes a user from a room
func (r *RoomRepo) RemoveParticipant(roomID, userID uuid.UUID) error {
	return r.db.
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&model.Participant{}).Error
}

// IsParticipant checks if a user belongs to a room
func (r *RoomRepo) IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

// CountParticipants returns the number of members in a room
func (r *RoomRepo) CountParticipants(roomID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Participant{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// GetParticipants returns all participants of a room with their users
func (r *RoomRepo) GetParticipants(roomID uuid.UUID) ([]model.Participant, error) {
	var participants []model.Participant
	err := r.db.
		Preload("User").
		Where("room_id = ?", roomID).
		Find(&participants).Error
	return participants, err
}

// GetParticipantIDs returns all member user IDs for a room
func (r *RoomRepo) GetParticipantIDs(roomID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&model.Participant{}).
		Where("room_id = ?", roomID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// UpdateLastActive stamps a participant's last_active time
func (r *RoomRepo) UpdateLastActive(roomID, userID uuid.UUID, at time.Time) error {
	return r.db.Model(&model.Participant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("last_active", at).Error
}

// ClearLastActive nulls a participant's last_active on graceful disconnect
func (r *RoomRepo) ClearLastActive(roomID, userID uuid.UUID) error {
	return r.db.Model(&model.Participant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("last_active", nil).Error
}

// TouchUpdatedAt bumps the room's updated_at timestamp (to sort by latest activity)
func (r *RoomRepo) TouchUpdatedAt(roomID uuid.UUID) error {
	return r.db.Model(&model.Room{}).
		Where("id = ?", roomID).
		Update("updated_at", gorm.Expr("NOW()")).Error
}
