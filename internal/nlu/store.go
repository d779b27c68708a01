package nlu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/service/cache"
)

// ContextStore keeps the last resolved query per (user, channel) pair.
// Implementations must be safe for concurrent use: a message and its
// pagination follow-up can be in flight at the same time.
type ContextStore interface {
	Get(ctx context.Context, userID, channelID string) (*domain.ConversationContext, error)
	Set(ctx context.Context, userID, channelID string, convCtx *domain.ConversationContext) error
}

// MemoryContextStore is the in-process store used in tests and single-node
// deployments.
type MemoryContextStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.ConversationContext
	ttl     time.Duration
}

func NewMemoryContextStore(ttl time.Duration) *MemoryContextStore {
	return &MemoryContextStore{
		entries: make(map[string]*domain.ConversationContext),
		ttl:     ttl,
	}
}

func (s *MemoryContextStore) Get(_ context.Context, userID, channelID string) (*domain.ConversationContext, error) {
	key := domain.ContextKey(userID, channelID)

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if time.Since(entry.Timestamp) >= s.ttl {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, nil
	}

	return entry, nil
}

func (s *MemoryContextStore) Set(_ context.Context, userID, channelID string, convCtx *domain.ConversationContext) error {
	if convCtx == nil {
		return fmt.Errorf("conversation context must not be nil")
	}

	s.mu.Lock()
	s.entries[domain.ContextKey(userID, channelID)] = convCtx
	s.mu.Unlock()
	return nil
}

// RedisContextStore shares conversation context across bot instances. Expiry
// is delegated to Redis TTLs.
type RedisContextStore struct {
	cache *cache.CacheService
	ttl   time.Duration
}

func NewRedisContextStore(cacheSvc *cache.CacheService, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{cache: cacheSvc, ttl: ttl}
}

func contextCacheKey(userID, channelID string) string {
	return fmt.Sprintf("salesops:context:%s", domain.ContextKey(userID, channelID))
}

func (s *RedisContextStore) Get(ctx context.Context, userID, channelID string) (*domain.ConversationContext, error) {
	var convCtx domain.ConversationContext
	if err := s.cache.Get(ctx, contextCacheKey(userID, channelID), &convCtx); err != nil {
		return nil, err
	}
	if convCtx.Timestamp.IsZero() {
		return nil, nil
	}
	return &convCtx, nil
}

func (s *RedisContextStore) Set(ctx context.Context, userID, channelID string, convCtx *domain.ConversationContext) error {
	if convCtx == nil {
		return fmt.Errorf("conversation context must not be nil")
	}
	return s.cache.Set(ctx, contextCacheKey(userID, channelID), convCtx, s.ttl)
}
