package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore persists records as JSON values under per-conversation keys.
// The key TTL is the inactivity window; every Save rearms it, so an idle
// conversation is reclaimed by Redis without any sweeper.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func (s *redisStore) key(conversationID string) string {
	return s.prefix + ":conv:" + conversationID
}

func (s *redisStore) Get(ctx context.Context, conversationID string) (*Record, error) {
	data, err := s.client.Get(ctx, s.key(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		// A corrupt blob is unrecoverable; treat it as no session rather
		// than failing every turn of the conversation.
		_ = s.client.Del(ctx, s.key(conversationID)).Err()
		return nil, nil
	}
	return &record, nil
}

func (s *redisStore) Save(ctx context.Context, record *Record) error {
	if record == nil || record.ConversationID == "" {
		return ErrInvalidConfig
	}

	stored := *record
	stored.UpdatedAt = time.Now()

	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(record.ConversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, s.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
