package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salesdesk/salesdesk/internal/cart"
)

// ErrCartNotFound indicates no draft is stored under the key.
var ErrCartNotFound = errors.New("builder: cart not found")

// Store keeps in-progress cart drafts between requests.
type Store interface {
	Load(ctx context.Context, key string) (cart.Draft, error)
	Save(ctx context.Context, key string, draft cart.Draft) error
	Delete(ctx context.Context, key string) error
}

// RedisStore keeps drafts as JSON in Redis. Every save refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, key string) (cart.Draft, error) {
	payload, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.Draft{}, ErrCartNotFound
		}
		return cart.Draft{}, fmt.Errorf("builder: load draft: %w", err)
	}
	var draft cart.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return cart.Draft{}, fmt.Errorf("builder: decode draft: %w", err)
	}
	return draft, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, key string, draft cart.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("builder: save draft: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("builder: delete draft: %w", err)
	}
	return nil
}

func redisKey(key string) string {
	return "cart:draft:" + key
}

// MemoryStore keeps drafts in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]cart.Draft
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]cart.Draft)}
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, key string) (cart.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[key]
	if !ok {
		return cart.Draft{}, ErrCartNotFound
	}
	return cloneDraft(draft), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, key string, draft cart.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = cloneDraft(draft)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

func cloneDraft(d cart.Draft) cart.Draft {
	out := d
	out.Lines = append([]cart.Line(nil), d.Lines...)
	out.Categories = append([]string(nil), d.Categories...)
	return out
}
