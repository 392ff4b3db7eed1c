package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/repository"
	"github.com/startuphub/backend/pkg/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenCachePrefix = "authtoken:"
	tokenCacheTTL    = userInfoTTL
)

// AuthService resolves opaque API tokens to principals and answers
// participant checks. Both operations sit on the WebSocket accept path, so
// token lookups go through a short-TTL Redis cache before touching Postgres.
type AuthService struct {
	userRepo repository.UserRepository
	roomRepo repository.RoomRepository
	rdb      *redis.Client
}

func NewAuthService(
	userRepo repository.UserRepository,
	roomRepo repository.RoomRepository,
	rdb *redis.Client,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		roomRepo: roomRepo,
		rdb:      rdb,
	}
}

// Login authenticates by username/password and returns the user's opaque API
// token, minting one on first login.
func (s *AuthService) Login(req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.userRepo.FindTokenByUser(user.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		key, err := auth.NewTokenKey()
		if err != nil {
			return nil, err
		}
		token = &model.AuthToken{Key: key, UserID: user.ID}
		if err := s.userRepo.CreateToken(token); err != nil {
			return nil, err
		}
	}

	return &model.LoginResponse{
		Token: token.Key,
		User:  user.Ref(),
	}, nil
}

// PrincipalFromToken resolves an opaque token to its user. Invalid or missing
// tokens yield ErrUnauthenticated. Cache failures fall through to the
// database.
func (s *AuthService) PrincipalFromToken(ctx context.Context, key string) (*model.UserRef, error) {
	if key == "" {
		return nil, ErrUnauthenticated
	}

	cacheKey := tokenCachePrefix + key
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var ref model.UserRef
			if json.Unmarshal([]byte(raw), &ref) == nil {
				return &ref, nil
			}
		}
	}

	user, err := s.userRepo.FindTokenUser(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	ref := user.Ref()
	if s.rdb != nil {
		if data, err := json.Marshal(ref); err == nil {
			s.rdb.Set(ctx, cacheKey, data, tokenCacheTTL)
		}
	}
	return &ref, nil
}

// IsParticipant answers whether the user belongs to the room.
func (s *AuthService) IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	return s.roomRepo.IsParticipant(ctx, roomID, userID)
}
