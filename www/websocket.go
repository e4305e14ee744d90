package www

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one browser following the sounding cards of the current run.
type Client struct {
	logger *slog.Logger
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
}

func NewClient(hub *Hub, w http.ResponseWriter, r *http.Request) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		logger: hub.logger.With(slog.String("remoteAddr", r.RemoteAddr)),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}, nil
}

// ReadPump discards incoming messages and keeps the pong deadline moving.
// It returns, and unregisters the client, when the browser goes away.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				c.logger.Debug("web socket closed", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("web socket set write deadline failed", slog.Any("error", err))
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(ws.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(ws.TextMessage, message); err != nil {
				c.logger.Warn("web socket write failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("web socket set write deadline failed", slog.Any("error", err))
				return
			}
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				c.logger.Debug("web socket ping failed", slog.Any("error", err))
				return
			}
		}
	}
}

type fragment struct {
	data  []byte
	reset bool
}

// Hub fans sounding fragments out to the connected clients. The fragments
// of the run in progress are kept so a browser connecting mid-run catches
// up with the hours already rendered.
type Hub struct {
	logger     *slog.Logger
	register   chan *Client
	unregister chan *Client
	broadcast  chan fragment
	clients    map[*Client]struct{}
	recent     [][]byte
	done       chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan fragment),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// Register adds a client and queues the fragments of the current run for it.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Publish sends a fragment to every client. A reset fragment starts a new
// run and drops the ones kept for late joiners.
func (h *Hub) Publish(data []byte, reset bool) {
	select {
	case h.broadcast <- fragment{data: data, reset: reset}:
	case <-h.done:
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			for _, m := range h.recent {
				if !h.deliver(c, m) {
					break
				}
			}
			h.logger.Debug("web socket client registered", slog.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.logger.Debug("web socket client unregistered", slog.Int("clients", len(h.clients)))

		case f := <-h.broadcast:
			if f.reset {
				h.recent = h.recent[:0]
			}
			h.recent = append(h.recent, f.data)
			for c := range h.clients {
				h.deliver(c, f.data)
			}
		}
	}
}

func (h *Hub) deliver(c *Client, m []byte) bool {
	select {
	case c.send <- m:
		return true
	default:
		h.logger.Warn("web socket client too slow, disconnecting")
		delete(h.clients, c)
		close(c.send)
		return false
	}
}
