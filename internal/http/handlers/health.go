package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// dependency is one backing service checked by /readyz. A nil pinger means
// the service is not configured and its fallback is in use.
type dependency struct {
	name   string
	pinger Pinger
}

type HealthHandler struct {
	deps    []dependency
	started time.Time
	version string
}

// NewHealthHandler checks Postgres and, when rdb is set, Redis. Without
// Redis the nonce store and trending cache run in memory.
func NewHealthHandler(db Pinger, rdb *redis.Client, version string) *HealthHandler {
	h := &HealthHandler{
		deps:    []dependency{{name: "database", pinger: db}},
		started: time.Now(),
		version: version,
	}
	cache := dependency{name: "redis"}
	if rdb != nil {
		cache.pinger = redisPinger{rdb: rdb}
	}
	h.deps = append(h.deps, cache)
	return h
}

type readiness struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Dependencies  map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness pings every configured dependency in parallel and answers 503
// when one of them is down.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	states := make([]string, len(h.deps))
	var g errgroup.Group
	for i, d := range h.deps {
		if d.pinger == nil {
			states[i] = "disabled"
			continue
		}
		g.Go(func() error {
			states[i] = "up"
			if err := d.pinger.Ping(ctx); err != nil {
				states[i] = "down"
			}
			return nil
		})
	}
	_ = g.Wait()

	out := readiness{
		Status:        "ready",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Dependencies:  make(map[string]string, len(h.deps)),
	}
	code := http.StatusOK
	for i, d := range h.deps {
		out.Dependencies[d.name] = states[i]
		if states[i] == "down" {
			out.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, out)
}
