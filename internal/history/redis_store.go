package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "assistant:history:"

// RedisStore keeps assistant conversations with a sliding TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, conversation string) ([]model.ChatMessage, error) {
	data, err := s.client.Get(ctx, keyPrefix+conversation).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var msgs []model.ChatMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return msgs, nil
}

func (s *RedisStore) Save(ctx context.Context, conversation string, msgs []model.ChatMessage) error {
	b, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+conversation, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, conversation string) error {
	if err := s.client.Del(ctx, keyPrefix+conversation).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
