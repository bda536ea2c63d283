package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"medboard-api/domain"
)

// Redis stores the board as a single JSON value under one key. A zero TTL
// keeps the board forever.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis creates a Redis-backed store.
func NewRedis(client *redis.Client, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = "board:items"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{client: client, key: key, ttl: ttl}
}

// LoadAll reads the stored items. An absent key is an empty board.
func (r *Redis) LoadAll(ctx context.Context) ([]domain.BoardItem, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []domain.BoardItem{}, nil
		}
		return nil, err
	}
	var items []domain.BoardItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveAll replaces the stored collection.
func (r *Redis) SaveAll(ctx context.Context, items []domain.BoardItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}
