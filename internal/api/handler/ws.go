package handler

import (
	"net/http"
	"time"

	"github.com/damilare/otc-exchange/internal/service"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsWriteTimeout = 5 * time.Second

// PriceStreamHandler pushes catalog price snapshots over a websocket. On
// connect the client gets the current snapshot immediately, then every
// published tick until it disconnects.
type PriceStreamHandler struct {
	feed     *service.PriceFeed
	upgrader websocket.Upgrader
}

func NewPriceStreamHandler(feed *service.PriceFeed) *PriceStreamHandler {
	return &PriceStreamHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stream upgrades the connection and runs the push loop.
func (h *PriceStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	snapshot, err := h.feed.Snapshot(r.Context())
	if err != nil {
		zap.L().Warn("initial price snapshot failed", zap.Error(err))
		return
	}
	if err := writePrices(conn, snapshot); err != nil {
		return
	}

	ticks, cancel := h.feed.Subscribe()
	defer cancel()

	// Drain client frames so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case prices, ok := <-ticks:
			if !ok {
				return
			}
			if err := writePrices(conn, prices); err != nil {
				return
			}
		}
	}
}

func writePrices(conn *websocket.Conn, prices []service.AssetPrice) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(map[string]interface{}{"type": "prices", "data": prices})
}
