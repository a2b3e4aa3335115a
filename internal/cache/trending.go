package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"creatememe/internal/domain"

	redis "github.com/redis/go-redis/v9"
)

const trendingKey = "trending:solana"

// RedisTrending stores the joined trending list as one JSON value.
type RedisTrending struct {
	client *redis.Client
}

func NewRedisTrending(client *redis.Client) *RedisTrending {
	return &RedisTrending{client: client}
}

func (t *RedisTrending) Get(ctx context.Context) ([]domain.TrendingToken, bool, error) {
	data, err := t.client.Get(ctx, trendingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var tokens []domain.TrendingToken
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, false, err
	}
	return tokens, true, nil
}

func (t *RedisTrending) Set(ctx context.Context, tokens []domain.TrendingToken, ttl time.Duration) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return t.client.Set(ctx, trendingKey, data, ttl).Err()
}

// MemoryTrending holds one expiring copy of the list in process.
type MemoryTrending struct {
	mu      sync.RWMutex
	tokens  []domain.TrendingToken
	expires time.Time
	now     func() time.Time
}

func NewMemoryTrending() *MemoryTrending {
	return &MemoryTrending{now: time.Now}
}

func (t *MemoryTrending) Get(_ context.Context) ([]domain.TrendingToken, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.tokens == nil || t.now().After(t.expires) {
		return nil, false, nil
	}
	return t.tokens, true, nil
}

func (t *MemoryTrending) Set(_ context.Context, tokens []domain.TrendingToken, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens = tokens
	t.expires = t.now().Add(ttl)
	return nil
}
