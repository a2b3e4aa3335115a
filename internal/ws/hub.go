package ws

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"creatememe/internal/chart"
	"creatememe/internal/logger"
)

// Hub owns the chart rooms, one per (address, interval). A room starts with
// its first subscriber and stops when the last one leaves.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	closed bool

	points      int
	minInterval time.Duration
	now         func() time.Time
	log         *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]*Room),
		points:      chart.DefaultPoints,
		minInterval: time.Second,
		now:         time.Now,
		log:         logger.With("component", "chart_ws"),
	}
}

func roomKey(address string, interval time.Duration) string {
	return address + "|" + interval.String()
}

// Join subscribes c. It returns nil once the hub is closed.
func (h *Hub) Join(c *Client, address string, interval time.Duration) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	key := roomKey(address, interval)
	r, ok := h.rooms[key]
	if !ok {
		r = newRoom(key, address, interval, h.points, h.now())
		h.rooms[key] = r
		go h.run(r)
		h.log.Debug("chart room opened", "address", address, "interval", interval)
	}
	r.add(c)
	c.room = r
	return r
}

// Leave unsubscribes c and closes its room when it was the last one.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := c.room
	if r == nil {
		return
	}
	c.room = nil
	delete(r.clients, c)

	if len(r.clients) == 0 && h.rooms[r.key] == r {
		delete(h.rooms, r.key)
		close(r.stop)
		h.log.Debug("chart room closed", "address", r.address, "interval", r.interval)
	}
}

func (h *Hub) run(r *Room) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			msg := r.advance()
			for c := range r.clients {
				c.trySend(msg)
			}
			h.mu.Unlock()
		}
	}
}

// RoomCount reports the number of live rooms.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Close stops every room and disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for key, r := range h.rooms {
		close(r.stop)
		for c := range r.clients {
			c.room = nil
			c.close()
		}
		delete(h.rooms, key)
	}
}

// normalizeInterval falls back to the default chart interval for values
// below the hub's minimum.
func (h *Hub) normalizeInterval(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return chart.DefaultInterval, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	if d < h.minInterval {
		d = chart.DefaultInterval
	}
	return d, true
}
