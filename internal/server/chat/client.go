package chat

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection in the room.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	addr string
	// id tells connections from the same address apart in logs.
	id string
}

func newClient(h *Hub, conn *websocket.Conn, addr string) *Client {
	id, err := common.MakeRandHexString(4)
	if err != nil {
		id = "unknown"
	}
	return &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.buffer),
		addr: addr,
		id:   id,
	}
}

// readPump forwards chat messages to the hub in the order they arrive on
// this connection. Anything that is not a well-formed chatMessage is ignored.
func (c *Client) readPump() {
	h := c.hub
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.ctx.Done():
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, websocket.ErrReadLimit) && !isExpectedCloseError(err) {
				h.logger.Warn(h.ctx, "chat read error", "addr", c.addr, "error", err)
			}
			return
		}

		msg, ok := decodeChatMessage(raw)
		if !ok {
			h.logger.Debug(h.ctx, "ignoring chat frame", "addr", c.addr)
			continue
		}

		select {
		case h.inbound <- msg:
		case <-h.ctx.Done():
			return
		}
	}
}

// writePump sends queued frames one websocket message each, plus pings.
// It exits when the hub closes c.send or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !isExpectedCloseError(err) {
					c.hub.logger.Warn(c.hub.ctx, "chat write error", "addr", c.addr, "error", err)
				}
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
