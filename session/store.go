package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned when the backing store cannot be reached.
var ErrUnavailable = errors.New("session store unavailable")

// ErrInvalidDriver is returned by [NewStore] for an unknown driver name.
var ErrInvalidDriver = errors.New("invalid session store driver")

// ErrInvalidConfig is returned by [NewStore] when a driver's required
// options are missing.
var ErrInvalidConfig = errors.New("invalid session store config")

// Store holds per-conversation trust state with a bounded lifetime.
//
// Implementations must be safe for concurrent use; the engine serializes
// events within one conversation but not across conversations.
type Store interface {
	// Get retrieves the record for a conversation.
	// Returns nil (not an error) when no record exists or its inactivity
	// window has elapsed.
	Get(ctx context.Context, conversationID string) (*Record, error)

	// Save persists the record and rearms its inactivity window.
	Save(ctx context.Context, record *Record) error

	// Delete removes the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, conversationID string) error

	// Close releases driver resources.
	Close() error
}

// Driver selects a [Store] implementation.
type Driver string

const (
	// DriverMemory is the in-process store used when the host platform has
	// no persistence across turns.
	DriverMemory Driver = "memory"
	// DriverRedis is the Redis-backed store for multi-instance deployments.
	DriverRedis Driver = "redis"
)

// Option configures [NewStore].
type Option func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	ttl         time.Duration
	keyPrefix   string
}

// WithRedisClient sets the Redis client for [DriverRedis].
func WithRedisClient(client *redis.Client) Option {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithTTL sets the inactivity window after which an untouched record is
// reclaimed. Defaults to 5 minutes.
func WithTTL(ttl time.Duration) Option {
	return func(c *storeConfig) {
		c.ttl = ttl
	}
}

// WithKeyPrefix sets the Redis key prefix. Defaults to "sb".
func WithKeyPrefix(prefix string) Option {
	return func(c *storeConfig) {
		c.keyPrefix = prefix
	}
}

const defaultTTL = 5 * time.Minute

// NewStore creates a [Store] backed by the given driver.
func NewStore(driver Driver, opts ...Option) (Store, error) {
	cfg := &storeConfig{
		ttl:       defaultTTL,
		keyPrefix: "sb",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ttl <= 0 {
		cfg.ttl = defaultTTL
	}

	switch driver {
	case DriverMemory:
		return &memoryStore{
			ttl:     cfg.ttl,
			records: make(map[string]memoryEntry),
		}, nil
	case DriverRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return &redisStore{
			client: cfg.redisClient,
			ttl:    cfg.ttl,
			prefix: cfg.keyPrefix,
		}, nil
	default:
		return nil, ErrInvalidDriver
	}
}
