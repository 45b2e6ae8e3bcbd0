package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"go-community/internal/model"
)

// ErrCacheMiss is returned when a key is absent from the cache.
var ErrCacheMiss = errors.New("cache miss")

// UserCache keeps JSON copies of user rows in Redis. Login tickets are never
// cached: their status can change in Postgres at any time.
type UserCache struct {
	client *redis.Client
	prefix string
}

func NewUserCache(client *redis.Client) *UserCache {
	return &UserCache{client: client, prefix: "community:"}
}

func (c *UserCache) userKey(id int) string {
	return c.prefix + "user:" + strconv.Itoa(id)
}

func (c *UserCache) GetUser(ctx context.Context, id int) (model.User, error) {
	key := c.userKey(id)
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.User{}, ErrCacheMiss
	}
	if err != nil {
		return model.User{}, fmt.Errorf("cache: get %s: %w", key, err)
	}

	var u model.User
	if err := json.Unmarshal(val, &u); err != nil {
		return model.User{}, fmt.Errorf("cache: unmarshal %s: %w", key, err)
	}
	return u, nil
}

// SetUser stores u for ttl. A non-positive ttl skips the write.
func (c *UserCache) SetUser(ctx context.Context, u model.User, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	key := c.userKey(u.ID)
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}
