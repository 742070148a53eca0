package chat

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/mealmate/internal/logging"
	"github.com/gorilla/websocket"
)

const defaultSendBuffer = 256

// HubConfig tunes a Hub.
type HubConfig struct {
	// SendBuffer is the per-client outbound queue length. A client whose
	// queue is full when a message is fanned out is disconnected.
	SendBuffer int
	// AllowedOrigins limits browser origins for the upgrade; "*" allows any.
	// Requests without an Origin header (non-browser clients) are accepted.
	AllowedOrigins []string
}

// Hub owns the client registry and the message log. Registration, fan-out
// and history replay all run on the Run goroutine, so every client sees
// messages in append order and a joining client gets the history followed
// by live messages without gaps or duplicates.
type Hub struct {
	log      Log
	logger   logging.Logger
	upgrader websocket.Upgrader
	buffer   int

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	inbound    chan Message

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(cfg HubConfig, log Log, logger logging.Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		log:        log,
		logger:     logger,
		buffer:     cfg.SendBuffer,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan Message),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

// Run is the hub event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.add(c)

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.inbound:
			h.broadcast(msg)
		}
	}
}

// add registers c and queues the history for it alone.
func (h *Hub) add(c *Client) {
	h.clients[c] = struct{}{}
	connectedClients.Inc()

	frame, err := encodeFrame(EventExistingMessages, h.log.Snapshot())
	if err != nil {
		h.logger.Error(h.ctx, "encode history", "error", err)
		return
	}
	if !h.enqueue(c, frame) {
		h.drop(c)
		return
	}
	h.logger.Info(h.ctx, "chat client registered", "client", c.id, "addr", c.addr, "clients", len(h.clients))
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	connectedClients.Dec()
	h.logger.Info(h.ctx, "chat client unregistered", "client", c.id, "addr", c.addr, "clients", len(h.clients))
}

// broadcast appends msg to the log and queues it for every client,
// including the sender.
func (h *Hub) broadcast(msg Message) {
	h.log.Append(msg)
	messagesTotal.Inc()

	frame, err := encodeFrame(EventMessage, msg)
	if err != nil {
		h.logger.Error(h.ctx, "encode message", "error", err)
		return
	}

	var slow []*Client
	for c := range h.clients {
		if !h.enqueue(c, frame) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.drop(c)
	}
}

func (h *Hub) enqueue(c *Client, frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (h *Hub) drop(c *Client) {
	droppedClientsTotal.Inc()
	h.logger.Warn(h.ctx, "chat client send buffer full, disconnecting", "addr", c.addr)
	h.remove(c)
}

func (h *Hub) closeAll() {
	n := len(h.clients)
	for c := range h.clients {
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
				h.logger.Warn(h.ctx, "close chat connection", "addr", c.addr, "error", err)
			}
		}
		delete(h.clients, c)
		close(c.send)
		connectedClients.Dec()
	}
	h.logger.Info(h.ctx, "chat hub closed connections", "count", n)
}

// ServeHTTP upgrades the request to a websocket and joins it to the room.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", "addr", r.RemoteAddr, "error", err)
		return
	}

	c := newClient(h, conn, r.RemoteAddr)

	select {
	case h.register <- c:
	case <-h.ctx.Done():
		_ = conn.Close()
		return
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		c.writePump()
	}()
	go func() {
		defer h.wg.Done()
		c.readPump()
	}()
}

// Shutdown stops Run, closes every connection and waits up to timeout for
// the client goroutines to exit.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
