package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	clientBuffer   = 256
	broadcastQueue = 64
)

var (
	errHubClosed = errors.New("event hub closed")
	errHubBusy   = errors.New("event hub busy, event dropped")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventHub fans conversion events out to websocket subscribers.
//
// The client set is owned by [EventHub.Run]; a subscriber whose buffer is full is dropped
// rather than allowed to stall the conversion.
type EventHub struct {
	clients    map[*client]struct{}
	broadcast  chan models.Event
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *log.Logger
}

// NewEventHub creates an [EventHub]. Call [EventHub.Run] before serving.
func NewEventHub(logger *log.Logger) *EventHub {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &EventHub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan models.Event, broadcastQueue),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the subscriber set until ctx is done, then disconnects everyone.
func (h *EventHub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("event subscriber connected", "remote", c.remote)
		case c := <-h.unregister:
			h.drop(c)
			h.logger.Debug("event subscriber disconnected", "remote", c.remote)
		case event := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- event:
				default:
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("dropping slow event subscriber", "remote", c.remote)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Emit queues event for every subscriber without blocking the caller.
func (h *EventHub) Emit(event models.Event) error {
	select {
	case <-h.done:
		return errHubClosed
	default:
	}

	select {
	case h.broadcast <- event:
		return nil
	default:
		return errHubBusy
	}
}

// Len reports the number of connected subscribers.
func (h *EventHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Routes implements [Handler].
func (h *EventHub) Routes() []string {
	return []string{"GET /api/events"}
}

// ServeHTTP upgrades the request to a websocket and subscribes it.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan models.Event, clientBuffer), remote: r.RemoteAddr}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *EventHub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

type client struct {
	hub    *EventHub
	conn   *websocket.Conn
	send   chan models.Event
	remote string
}

// readPump only services control frames; subscribers never send data.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "remote", c.remote, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.hub.logger.Debug("websocket write failed", "remote", c.remote, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
