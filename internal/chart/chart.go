// Package chart produces the simulated price series shown for platform
// tokens. The walk is seeded from the token address and anchored to wall
// clock time, so every client sees the same candle for the same moment.
package chart

import (
	"hash/fnv"
	"math"
	"time"

	"creatememe/internal/domain"
)

// glibc-style LCG constants.
const (
	lcgA = 1103515245
	lcgC = 12345
	lcgM = 1 << 31
)

const (
	DefaultPoints   = 100
	MaxPoints       = 500
	DefaultInterval = time.Minute

	volatility = 0.04
	minPrice   = 1e-9
)

// scales of the value noise behind the price level, in candles.
var octaves = []struct {
	span int64
	amp  float64
}{
	{span: 96, amp: 0.9},
	{span: 24, amp: 0.35},
	{span: 6, amp: 0.12},
}

// Walk is a token's price path at one interval. Candle k starts at
// k*interval after the Unix epoch and its prices depend only on the address
// and k, so any window over the same times yields the same candles.
// A Walk is immutable and safe for concurrent use.
type Walk struct {
	seed     uint64
	base     float64
	interval time.Duration
}

// NewWalk seeds a walk from address. interval must be positive.
func NewWalk(address string, interval time.Duration) *Walk {
	h := fnv.New32a()
	_, _ = h.Write([]byte(address))

	w := &Walk{seed: uint64(h.Sum32()) % lcgM, interval: interval}
	w.base = 0.00001 + float64(lcg(w.seed))/lcgM*0.0009
	return w
}

func lcg(state uint64) uint64 {
	return (lcgA*state + lcgC) % lcgM
}

// unit returns a value in [0, 1) for candle k and a salt.
func (w *Walk) unit(k, salt int64) float64 {
	state := (w.seed ^ uint64(k)*0x9E3779B97F4A7C15 ^ uint64(salt)*0xC2B2AE3D27D4EB4F) % lcgM
	state = lcg(lcg(lcg(state)))
	return float64(state) / lcgM
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// level is the closing price of candle k.
func (w *Walk) level(k int64) float64 {
	x := 0.0
	for i, o := range octaves {
		cell := floorDiv(k, o.span)
		frac := float64(k-cell*o.span) / float64(o.span)
		a := w.unit(cell, int64(10+i))*2 - 1
		b := w.unit(cell+1, int64(10+i))*2 - 1
		x += o.amp * (a + (b-a)*frac*frac*(3-2*frac))
	}
	x += volatility * (w.unit(k, 0)*2 - 1)
	return math.Max(w.base*math.Exp(x), minPrice)
}

func (w *Walk) index(t time.Time) int64 {
	return floorDiv(t.UnixNano(), int64(w.interval))
}

// Align returns the start of the candle containing t.
func (w *Walk) Align(t time.Time) time.Time {
	return time.Unix(0, w.index(t)*int64(w.interval)).UTC()
}

// At returns the candle containing t. Its open is the previous close.
func (w *Walk) At(t time.Time) domain.Candle {
	k := w.index(t)
	open, closePrice := w.level(k-1), w.level(k)
	change := closePrice/open - 1

	high := math.Max(open, closePrice) * (1 + w.unit(k, 1)*0.01)
	low := math.Max(math.Min(open, closePrice)*(1-w.unit(k, 2)*0.01), minPrice)
	volume := 1_000 + w.unit(k, 3)*50_000*(1+math.Abs(change)*10)

	return domain.Candle{
		Time:   time.Unix(0, k*int64(w.interval)).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: math.Round(volume*100) / 100,
	}
}

// Window returns points consecutive candles, the last one containing end.
func (w *Walk) Window(points int, end time.Time) []domain.Candle {
	last := w.Align(end)
	out := make([]domain.Candle, points)
	for i := range out {
		out[i] = w.At(last.Add(-time.Duration(points-1-i) * w.interval))
	}
	return out
}

// Series returns points candles ending at end after clamping the request
// with Normalize. It agrees with the live stream for the same times.
func Series(address string, points int, interval time.Duration, end time.Time) []domain.Candle {
	points, interval = Normalize(points, interval)
	return NewWalk(address, interval).Window(points, end)
}

// Normalize clamps request parameters to supported ranges.
func Normalize(points int, interval time.Duration) (int, time.Duration) {
	if points <= 0 {
		points = DefaultPoints
	}
	if points > MaxPoints {
		points = MaxPoints
	}
	if interval < time.Second {
		interval = DefaultInterval
	}
	return points, interval
}
