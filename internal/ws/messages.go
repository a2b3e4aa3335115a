package ws

import "creatememe/internal/domain"

// server -> client
const (
	MsgSnapshot = "snapshot"
	MsgCandle   = "candle"
)

// Message is the only frame the chart stream sends. A snapshot carries the
// room's recent history, a candle frame one new bar.
type Message struct {
	Type     string          `json:"type"`
	Address  string          `json:"address"`
	Interval string          `json:"interval"`
	Candles  []domain.Candle `json:"candles,omitempty"`
	Candle   *domain.Candle  `json:"candle,omitempty"`
}
