package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// NewRedis connects to Redis. An empty addr returns a nil client and no
// error; callers then fall back to the in-memory stores.
func NewRedis(addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
