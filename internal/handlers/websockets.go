package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"solarweather/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 5 * time.Second
	minInterval      = 10 * time.Millisecond
	maxInterval      = 10 * time.Minute
	maxIntervalMilli = 600_000 // 10m in ms

	wsTypeSnapshot = "snapshot"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Stream dashboard snapshots
// @Description  Upgrades to a WebSocket and pushes {"type":"snapshot","data":...} every interval.
// @Tags         dashboard
// @Param        dashboard    query  string  false  "Dashboard"  Enums(weather,solar)
// @Param        interval     query  string  false  "Push interval as a Go duration, e.g. 30s"
// @Param        interval_ms  query  int     false  "Push interval in milliseconds"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	q := service.SnapshotQuery{Dashboard: c.Query("dashboard")}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	h.metrics.WSConnected()
	defer func() {
		h.metrics.WSDisconnected()
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := h.sendSnapshot(c.Request.Context(), conn, q); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendSnapshot(c.Request.Context(), conn, q); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=30s or ?interval_ms=30000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= minInterval && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v >= int(minInterval/time.Millisecond) && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// sendSnapshot builds the dashboard snapshot and writes it with a write
// deadline. A failed build is reported to the client before the error is
// returned.
func (h *Handler) sendSnapshot(ctx context.Context, conn *websocket.Conn, q service.SnapshotQuery) error {
	snap, err := h.services.Snapshot(ctx, q)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_snapshot_failed", "err", err)
		}
		_ = conn.WriteJSON(wsEnvelope{Type: wsTypeSnapshot, Error: errLoadSnapshot})
		return err
	}
	return conn.WriteJSON(wsEnvelope{Type: wsTypeSnapshot, Data: snap})
}
