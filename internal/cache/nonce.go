package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisNonces keeps sign-in nonces under nonce:<address> with a TTL.
type RedisNonces struct {
	client *redis.Client
}

func NewRedisNonces(client *redis.Client) *RedisNonces {
	return &RedisNonces{client: client}
}

func nonceKey(address string) string {
	return "nonce:" + address
}

// Issue replaces any outstanding nonce for address.
func (n *RedisNonces) Issue(ctx context.Context, address, nonce string, ttl time.Duration) error {
	return n.client.Set(ctx, nonceKey(address), nonce, ttl).Err()
}

// Consume deletes the stored nonce and reports whether it matched.
// A nonce can be consumed at most once.
func (n *RedisNonces) Consume(ctx context.Context, address, nonce string) (bool, error) {
	stored, err := n.client.GetDel(ctx, nonceKey(address)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == nonce, nil
}

type nonceEntry struct {
	nonce   string
	expires time.Time
}

// MemoryNonces is the single-process fallback when Redis is not configured.
type MemoryNonces struct {
	mu      sync.Mutex
	entries map[string]nonceEntry
	now     func() time.Time
}

func NewMemoryNonces() *MemoryNonces {
	return &MemoryNonces{entries: make(map[string]nonceEntry), now: time.Now}
}

func (n *MemoryNonces) Issue(_ context.Context, address, nonce string, ttl time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	for k, e := range n.entries {
		if now.After(e.expires) {
			delete(n.entries, k)
		}
	}
	n.entries[address] = nonceEntry{nonce: nonce, expires: now.Add(ttl)}
	return nil
}

func (n *MemoryNonces) Consume(_ context.Context, address, nonce string) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	e, ok := n.entries[address]
	if !ok {
		return false, nil
	}
	delete(n.entries, address)
	if n.now().After(e.expires) {
		return false, nil
	}
	return e.nonce == nonce, nil
}
