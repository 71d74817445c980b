package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore implements StateStore using Redis. It lets conversation
// state survive restarts and be shared by multiple instances.
type RedisStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string
	// Password is the Redis password (optional).
	Password string
	// DB is the Redis database number.
	DB int
	// Prefix is the key prefix for all state keys (default: "visitlog:state:").
	Prefix string
	// StateTTL is the state expiry duration (0 = never expire).
	StateTTL time.Duration
}

// NewRedisStateStore creates a Redis-backed state store and verifies the
// connection with a ping.
func NewRedisStateStore(cfg RedisConfig) (*RedisStateStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStateStoreFromClient(client, cfg.Prefix, cfg.StateTTL), nil
}

// NewRedisStateStoreFromClient creates a store from an existing client.
// This is useful for testing with miniredis.
func NewRedisStateStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStateStore {
	if prefix == "" {
		prefix = "visitlog:state:"
	}
	return &RedisStateStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStateStore) key(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}

func (s *RedisStateStore) checkClosed() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New("state store is closed")
	}
	return nil
}

// Get returns the user's state, StateIdle when no key exists.
func (s *RedisStateStore) Get(ctx context.Context, userID int64) (State, error) {
	if err := s.checkClosed(); err != nil {
		return StateIdle, err
	}

	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return StateIdle, nil
	}
	if err != nil {
		return StateIdle, fmt.Errorf("get state: %w", err)
	}
	return ParseState(val)
}

// Set records the user's state.
func (s *RedisStateStore) Set(ctx context.Context, userID int64, state State) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(userID), state.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}

// Clear resets the user to StateIdle.
func (s *RedisStateStore) Clear(ctx context.Context, userID int64) error {
	if err := s.checkClosed(); err != nil {
		return err
	}

	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStateStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
