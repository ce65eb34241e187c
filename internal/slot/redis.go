package slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func NewRedisSlot(client *redis.Client) *RedisSlot {
	return &RedisSlot{
		client: client,
		prefix: "slot",
	}
}

// RedisSlot stores each slot under "slot:<key>" without expiry.
type RedisSlot struct {
	client *redis.Client
	prefix string
}

func (r RedisSlot) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.slotKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, Unavailable(fmt.Errorf("redis get failed: %w", err))
	}
	return data, nil
}

func (r RedisSlot) Save(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.slotKey(key), value, 0).Err(); err != nil {
		return Unavailable(fmt.Errorf("redis set failed: %w", err))
	}
	return nil
}

func (r RedisSlot) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.slotKey(key)).Err(); err != nil {
		return Unavailable(fmt.Errorf("redis delete failed: %w", err))
	}
	return nil
}

func (r RedisSlot) slotKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}
