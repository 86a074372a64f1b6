package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no session exists for a token.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "stagefront:session:"

// Store persists ambient sessions keyed by their auth token.
type Store interface {
	Get(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	// Clear removes the session for a token. Called by the transport
	// client on upstream authentication failure.
	Clear(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, token string) (*Session, error) {
	val, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session get error: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("session unmarshal error: %w", err)
	}
	return &sess, nil
}

func (s *redisStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return errors.New("session token cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session marshal error: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.Token, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set error: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session delete error: %w", err)
	}
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an in-memory session store. Used in tests and as
// a degraded fallback when redis is unreachable at startup.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]*Session)}
}

func (s *memoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *memoryStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return errors.New("session token cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.sessions[sess.Token] = &copied
	return nil
}

func (s *memoryStore) Clear(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return nil
}
