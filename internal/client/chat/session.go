// Package chat is the client side of the MealMate chat room.
package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	eventExistingMessages = "existingMessages"
	eventChatMessage      = "chatMessage"
	eventMessage          = "message"

	writeWait = 10 * time.Second
	closeWait = time.Second
)

var dialer = websocket.DefaultDialer

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type message struct {
	User    string `json:"user"`
	Content string `json:"content"`
}

type outgoing struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

// Session is one connection to the room on behalf of a user.
type Session struct {
	conn *websocket.Conn
	user string
}

func Dial(ctx context.Context, url, user string) (*Session, error) {
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("chat connect: %w", err)
	}
	return &Session{conn: conn, user: user}, nil
}

// Run prints the room to out and sends every non-blank line of in until in
// is exhausted, the server goes away or ctx is cancelled.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	defer s.conn.Close()

	readErr := make(chan error, 1)
	go func() { readErr <- s.readLoop(out) }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return s.leave(readErr)
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return s.leave(readErr)
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := s.send(line); err != nil {
				return err
			}
		}
	}
}

func (s *Session) send(text string) error {
	data, err := json.Marshal(outgoing{User: s.user, Message: text})
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(frame{Event: eventChatMessage, Data: data})
}

// leave sends a close frame and waits briefly for the server to answer.
func (s *Session) leave(readErr <-chan error) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))

	select {
	case err := <-readErr:
		return err
	case <-time.After(closeWait):
		return nil
	}
}

func (s *Session) readLoop(out io.Writer) error {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("chat read: %w", err)
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}

		switch f.Event {
		case eventExistingMessages:
			var history []message
			if err := json.Unmarshal(f.Data, &history); err != nil {
				continue
			}
			for _, m := range history {
				printMessage(out, m)
			}
		case eventMessage:
			var m message
			if err := json.Unmarshal(f.Data, &m); err != nil {
				continue
			}
			printMessage(out, m)
		}
	}
}

func printMessage(out io.Writer, m message) {
	fmt.Fprintf(out, "%s: %s\n", m.User, m.Content)
}
