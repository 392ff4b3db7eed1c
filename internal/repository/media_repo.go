package repository

import (
	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/model"
	"gorm.io/gorm"
)

// MediaRepository abstracts media file persistence.
type MediaRepository interface {
	Create(m *model.MediaFile) error
	FindByID(id uuid.UUID) (*model.MediaFile, error)
	Update(m *model.MediaFile) error
	ListForUser(userID uuid.UUID) ([]model.MediaFile, error)
	Delete(id uuid.UUID) error
}

// MediaRepo is the GORM implementation of MediaRepository.
type MediaRepo struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepo {
	return &MediaRepo{db: db}
}

// Create inserts a new media file record
func (r *MediaRepo) Create(m *model.MediaFile) error {
	return r.db.Create(m).Error
}

// FindByID finds a media file by ID
func (r *MediaRepo) FindByID(id uuid.UUID) (*model.MediaFile, error) {
	var m model.MediaFile
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Update saves changed fields of a media file record
func (r *MediaRepo) Update(m *model.MediaFile) error {
	return r.db.Save(m).Error
}

// ListForUser returns a user's uploads, newest first
func (r *MediaRepo) ListForUser(userID uuid.UUID) ([]model.MediaFile, error) {
	files := []model.MediaFile{}
	err := r.db.
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

// Delete removes a media file record
func (r *MediaRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.MediaFile{}, "id = ?", id).Error
}
