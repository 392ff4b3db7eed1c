package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/startuphub/backend/internal/model"
	"github.com/startuphub/backend/internal/repository"
)

const (
	userInfoPrefix = "userinfo:"
	userInfoTTL    = 5 * time.Minute
)

// UserCache backs sender annotation on outbound chat envelopes with a
// short-TTL Redis cache in front of the users table.
type UserCache struct {
	userRepo repository.UserRepository
	rdb      *redis.Client
}

func NewUserCache(userRepo repository.UserRepository, rdb *redis.Client) *UserCache {
	return &UserCache{userRepo: userRepo, rdb: rdb}
}

// Get resolves a user id to its wire shape. Entries are immutable for their
// TTL; cache errors fall through to the database.
func (c *UserCache) Get(ctx context.Context, id uuid.UUID) (*model.UserRef, error) {
	cacheKey := userInfoPrefix + id.String()
	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var ref model.UserRef
			if json.Unmarshal([]byte(raw), &ref) == nil {
				return &ref, nil
			}
		}
	}

	user, err := c.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	ref := user.Ref()
	if c.rdb != nil {
		if data, err := json.Marshal(ref); err == nil {
			c.rdb.Set(ctx, cacheKey, data, userInfoTTL)
		}
	}
	return &ref, nil
}
