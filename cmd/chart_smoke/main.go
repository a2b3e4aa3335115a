package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"creatememe/internal/logger"
	"creatememe/internal/solana"
	"creatememe/internal/ws"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("host", "127.0.0.1:8080", "server host:port")
	address := flag.String("address", solana.NativeMint, "token mint to stream")
	interval := flag.String("interval", "1s", "candle interval")
	count := flag.Int("n", 3, "live candles to wait for")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"), false)

	u := url.URL{
		Scheme:   "ws",
		Host:     *host,
		Path:     "/ws/chart/" + *address,
		RawQuery: url.Values{"interval": {*interval}}.Encode(),
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Fatal("dial failed", "url", u.String(), "error", err)
	}
	defer conn.Close()

	seen := 0
	for seen < *count {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			logger.Fatal("read failed", "error", err)
		}

		var msg ws.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Fatal("bad frame", "error", err, "frame", string(raw))
		}
		switch msg.Type {
		case ws.MsgSnapshot:
			fmt.Printf("snapshot: %d candles, interval %s\n", len(msg.Candles), msg.Interval)
		case ws.MsgCandle:
			seen++
			c := msg.Candle
			fmt.Printf("%s o=%.8f h=%.8f l=%.8f c=%.8f v=%.2f\n",
				c.Time.Format(time.RFC3339), c.Open, c.High, c.Low, c.Close, c.Volume)
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	fmt.Println("smoke test finished")
}
