package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionTokenStore keeps the most recently issued access token per
// account. A Record for an account that already has an entry replaces
// it; there is never more than one live token per account.
type SessionTokenStore interface {
	Record(ctx context.Context, email, token string, ttl time.Duration) error
	Lookup(ctx context.Context, email string) (string, bool, error)
	Revoke(ctx context.Context, email string) error
}

type RedisSessionTokenStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSessionTokenStore(client redis.UniversalClient, prefix string) *RedisSessionTokenStore {
	if prefix == "" {
		prefix = "user_session"
	}
	return &RedisSessionTokenStore{client: client, prefix: prefix}
}

func (s *RedisSessionTokenStore) Record(ctx context.Context, email, token string, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(email), token, ttl).Err()
}

func (s *RedisSessionTokenStore) Lookup(ctx context.Context, email string) (string, bool, error) {
	if s.client == nil {
		return "", false, nil
	}
	value, err := s.client.Get(ctx, s.key(email)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisSessionTokenStore) Revoke(ctx context.Context, email string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, s.key(email)).Err()
}

func (s *RedisSessionTokenStore) key(email string) string {
	return fmt.Sprintf("%s:%s", s.prefix, normalizeEmailKey(email))
}

func normalizeEmailKey(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// MemorySessionTokenStore backs local development and tests where no
// Redis instance is reachable.
type MemorySessionTokenStore struct {
	mu      sync.Mutex
	entries map[string]memorySessionEntry
}

type memorySessionEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemorySessionTokenStore() *MemorySessionTokenStore {
	return &MemorySessionTokenStore{entries: make(map[string]memorySessionEntry)}
}

func (s *MemorySessionTokenStore) Record(_ context.Context, email, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[normalizeEmailKey(email)] = memorySessionEntry{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionTokenStore) Lookup(_ context.Context, email string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[normalizeEmailKey(email)]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, normalizeEmailKey(email))
		return "", false, nil
	}
	return entry.token, true, nil
}

func (s *MemorySessionTokenStore) Revoke(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, normalizeEmailKey(email))
	return nil
}
