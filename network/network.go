package network

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"garden/game"
	"garden/protocol"
	"garden/room"
)

const (
	readLimit    = 1 << 16
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
)

type HandlerConfig struct {
	Logger *log.Logger
	Binary bool // server frames are websocket binary messages
}

// Handler upgrades viewers and feeds their messages into one room.
type Handler struct {
	room     *room.Room
	logger   *log.Logger
	binary   bool
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewHandler(r *room.Room, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		room:   r,
		logger: logger,
		binary: cfg.Binary,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// For dev, allow all origins. Lock this down in prod.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// NewMux serves the websocket endpoint and a health probe.
func NewMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/healthz", h.Health)
	return mux
}

// decoder turns one inbound envelope into a room command.
type decoder func(connID string, env protocol.Envelope) (any, bool)

var dispatch = map[string]decoder{
	protocol.MsgJoin: func(id string, env protocol.Envelope) (any, bool) {
		j := protocol.DecodeJoin(env.P)
		return room.Join{ConnID: id, Name: j.Name}, true
	},
	protocol.MsgInput: func(id string, env protocol.Envelope) (any, bool) {
		in := protocol.DecodeInput(env.P)
		return room.Input{SessionID: id, Input: game.Intent{Left: in.Left, Right: in.Right, Jump: in.Jump}}, true
	},
	protocol.MsgChat: func(id string, env protocol.Envelope) (any, bool) {
		c := protocol.DecodeChat(env.P)
		return room.Chat{SessionID: id, Text: c.Text}, true
	},
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP -> WebSocket
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Println("upgrade:", err)
		return
	}
	defer conn.Close()

	id := fmt.Sprintf("c%d", h.nextID.Add(1))
	wc := &wsConn{conn: conn, msgType: websocket.TextMessage}
	if h.binary {
		wc.msgType = websocket.BinaryMessage
	}
	if !h.room.Submit(room.Connect{ConnID: id, Conn: wc}) {
		return
	}
	defer h.room.Submit(room.Leave{SessionID: id})

	// Basic timeouts + pong handling (keeps connections healthy)
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Printf("read %s: %v", id, err)
			}
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", id, err)
			continue
		}
		decode, ok := dispatch[env.T]
		if !ok {
			h.logger.Printf("discarding unknown message %q from %s", env.T, id)
			continue
		}
		if cmd, ok := decode(id, env); ok && !h.room.Submit(cmd) {
			return
		}
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": h.room.NumSessions(),
		"viewers":  h.room.NumViewers(),
	})
}

// WriteControl may run concurrently with the viewer's writer.
func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// wsConn adapts a websocket to room.Conn. Only the viewer's writer calls
// Send.
type wsConn struct {
	conn    *websocket.Conn
	msgType int
}

func (c *wsConn) Send(b []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(c.msgType, b)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
