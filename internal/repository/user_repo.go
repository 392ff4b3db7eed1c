package repository

import (
	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/model"
	"gorm.io/gorm"
)

// UserRepository abstracts user and token persistence.
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uuid.UUID) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	CreateToken(token *model.AuthToken) error
	FindTokenUser(key string) (*model.User, error)
	FindTokenByUser(userID uuid.UUID) (*model.AuthToken, error)
	DeleteToken(key string) error
}

// UserRepo is the GORM implementation of UserRepository.
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user
func (r *UserRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by UUID
func (r *UserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *UserRepo) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateToken inserts a new opaque API token for a user
func (r *UserRepo) CreateToken(token *model.AuthToken) error {
	return r.db.Create(token).Error
}

// FindTokenUser resolves a token key to its owning user
func (r *UserRepo) FindTokenUser(key string) (*model.User, error) {
	var token model.AuthToken
	err := r.db.Preload("User").Where("key = ?", key).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token.User, nil
}

// FindTokenByUser returns the user's existing token, if any
func (r *UserRepo) FindTokenByUser(userID uuid.UUID) (*model.AuthToken, error) {
	var token model.AuthToken
	err := r.db.Where("user_id = ?", userID).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteToken removes a token by key
func (r *UserRepo) DeleteToken(key string) error {
	return r.db.Delete(&model.AuthToken{}, "key = ?", key).Error
}
