package sessionRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"calbook/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "booking:session:"

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, conversationID string) (*models.BookingSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+conversationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session models.BookingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.BookingSession) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.ID, b, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, conversationID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+conversationID).Err()
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
