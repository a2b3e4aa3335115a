package ws

import (
	"encoding/json"
	"time"

	"creatememe/internal/chart"
	"creatememe/internal/domain"
)

// Room streams one token's walk at one interval to its subscribers. The
// history and client set are guarded by the hub's room lock.
type Room struct {
	key      string
	address  string
	interval time.Duration

	walk    *chart.Walk
	history []domain.Candle
	keep    int
	clients map[*Client]struct{}

	stop chan struct{}
}

// newRoom seeds history with the window chart.Series returns for now, so
// the REST chart and the stream agree on every candle.
func newRoom(key, address string, interval time.Duration, points int, now time.Time) *Room {
	walk := chart.NewWalk(address, interval)
	return &Room{
		key:      key,
		address:  address,
		interval: interval,
		walk:     walk,
		history:  walk.Window(points, now),
		keep:     points,
		clients:  make(map[*Client]struct{}),
		stop:     make(chan struct{}),
	}
}

func (r *Room) encode(m Message) []byte {
	m.Address = r.address
	m.Interval = r.interval.String()
	b, _ := json.Marshal(m)
	return b
}

// add registers c and queues the snapshot before any later candle.
// Caller holds the hub lock.
func (r *Room) add(c *Client) {
	r.clients[c] = struct{}{}
	c.trySend(r.encode(Message{Type: MsgSnapshot, Candles: r.history}))
}

// advance produces the next candle one interval after the last one.
// Caller holds the hub lock.
func (r *Room) advance() []byte {
	next := r.history[len(r.history)-1].Time.Add(r.interval)
	candle := r.walk.At(next)

	r.history = append(r.history, candle)
	if len(r.history) > r.keep {
		r.history = append(r.history[:0:0], r.history[len(r.history)-r.keep:]...)
	}
	return r.encode(Message{Type: MsgCandle, Candle: &candle})
}
