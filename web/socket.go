package web

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"giveaway-grid/render"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// submitMessage is sent by the page when the fetch button is pressed.
// numpages is the raw input value, string or number.
type submitMessage struct {
	NumPages json.RawMessage `json:"numpages"`
}

// input returns the page count exactly as the user typed it
func (m submitMessage) input() string {
	raw := bytes.TrimSpace(m.NumPages)
	var s string
	if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	return string(raw)
}

// gridFrame carries the full grid contents to the page
type gridFrame struct {
	State string `json:"state"`
	HTML  string `json:"html"`
}

// handleSocket gives every connection its own grid and controller.
// Closing the socket cancels whatever request is still in flight.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	logger := s.logger.With("conn_id", uuid.NewString())
	logger.Debug("websocket connected", "remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	grid := render.NewGrid(logger)
	ctrl := s.newController(grid, logger)

	updates, unsubscribe := grid.Subscribe()
	defer unsubscribe()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, conn, grid, updates, logger)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg submitMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			break
		}
		if err := ctrl.Submit(ctx, msg.input()); err != nil {
			logger.Debug("submit rejected", "error", err)
		}
	}

	cancel()
	ctrl.Wait()
	<-writerDone
	conn.Close()
	logger.Debug("websocket closed")
}

// writeLoop is the only writer on conn. It pushes the grid after every change
// and keeps the connection alive with pings.
func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, grid *render.Grid, updates <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var sent uint64
	push := func() bool {
		snap := grid.Snapshot()
		if snap.Version == sent && sent != 0 {
			return true
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(gridFrame{State: snap.State.String(), HTML: string(snap.HTML)}); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return false
		}
		sent = snap.Version
		return true
	}

	// initial state, so a reconnecting page shows what the grid holds
	if !push() {
		conn.Close()
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-updates:
			if !push() {
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Debug("websocket ping failed", "error", err)
				conn.Close()
				return
			}
		}
	}
}
