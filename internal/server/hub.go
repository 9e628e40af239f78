package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/motifkit/motif/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peers with this period.
	pingPeriod = 54 * time.Second

	// Per-client send buffer; slow clients are dropped when it fills.
	sendBuffer = 64
)

// Hub fans broadcast messages out to connected live-reload clients.
type Hub struct {
	log logging.Logger

	mu      sync.Mutex
	clients map[*client]bool
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(log logging.Logger) *Hub {
	return &Hub{
		log:     log.WithComponent("hub"),
		clients: make(map[*client]bool),
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues a message for every connected client. Clients whose send
// buffer is full are disconnected rather than blocking the broadcast.
func (h *Hub) Broadcast(message []byte) {
	h.mu.Lock()
	var stale []*client
	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			stale = append(stale, c)
			delete(h.clients, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stale {
		close(c.send)
	}
}

// Close disconnects every client and rejects future connections.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]bool)
	h.closed = true
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = true
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ServeWS upgrades the request and runs the client's read and write pumps.
// The origin must already have been validated by the caller.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: false,
	})
	if err != nil {
		h.log.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	h.log.Debug(r.Context(), "client connected", "total", h.ClientCount())

	go c.writePump(h)
	c.readPump(r.Context(), h)
}

// readPump drains client messages until the connection closes. Live-reload
// clients are not expected to send anything; reads only surface closure.
func (c *client) readPump(ctx context.Context, h *Hub) {
	defer func() {
		h.remove(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure &&
				status != websocket.StatusGoingAway {
				h.log.Debug(ctx, "client read ended", "error", err.Error())
			}
			return
		}
	}
}

func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// checkOrigin validates the request origin against the configured host and
// the loopback defaults.
func checkOrigin(r *http.Request, host string, port int, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Reject connections without an origin header.
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	allowedHosts := append([]string{
		fmt.Sprintf("%s:%d", host, port),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	}, allowed...)

	for _, a := range allowedHosts {
		if originURL.Host == a {
			return true
		}
	}
	return false
}
