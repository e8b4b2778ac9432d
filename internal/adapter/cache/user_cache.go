package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-account-service/internal/domain/user"
)

// keyPrefix namespaces account entries; bump the version when snapshot changes shape.
const keyPrefix = "account:v1:user"

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id int64) error
}

// snapshot is the cached form of a user. It never holds the password hash.
type snapshot struct {
	ID                int64      `json:"id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	Gender            string     `json:"gender,omitempty"`
	BirthDate         *time.Time `json:"birth_date,omitempty"`
	PreferredLanguage string     `json:"preferred_language,omitempty"`
	PreferredCurrency string     `json:"preferred_currency,omitempty"`
	Address           string     `json:"address,omitempty"`
	Role              string     `json:"role,omitempty"`
	Department        string     `json:"department,omitempty"`
	LineManager       string     `json:"line_manager,omitempty"`
	PhoneNumber       string     `json:"phone_number,omitempty"`
	RoleID            *int64     `json:"role_id,omitempty"`
	IsVerified        bool       `json:"is_verified"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func fromDomain(u *domain.User) snapshot {
	return snapshot{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Gender:            string(u.Gender),
		BirthDate:         u.BirthDate,
		PreferredLanguage: u.PreferredLanguage,
		PreferredCurrency: u.PreferredCurrency,
		Address:           u.Address,
		Role:              u.Role,
		Department:        u.Department,
		LineManager:       u.LineManager,
		PhoneNumber:       u.PhoneNumber,
		RoleID:            u.RoleID,
		IsVerified:        u.IsVerified,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (s snapshot) toDomain() *domain.User {
	return &domain.User{
		ID:                s.ID,
		FirstName:         s.FirstName,
		LastName:          s.LastName,
		Email:             s.Email,
		Gender:            domain.Gender(s.Gender),
		BirthDate:         s.BirthDate,
		PreferredLanguage: s.PreferredLanguage,
		PreferredCurrency: s.PreferredCurrency,
		Address:           s.Address,
		Role:              s.Role,
		Department:        s.Department,
		LineManager:       s.LineManager,
		PhoneNumber:       s.PhoneNumber,
		RoleID:            s.RoleID,
		IsVerified:        s.IsVerified,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) UserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key for a user ID.
func Key(id int64) string {
	return fmt.Sprintf("%s:%d", keyPrefix, id)
}

// Get retrieves a user from Redis cache. Users served from cache carry no password hash.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return s.toDomain(), nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	data, err := json.Marshal(fromDomain(user))
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, Key(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}
