// Package chat is the realtime broadcast channel: a single shared room where
// every connected websocket receives the message history on join and then
// each new message as it is appended.
package chat

import "sync"

// Message is one chat line.
type Message struct {
	User    string `json:"user"`
	Content string `json:"content"`
}

// Log is the ordered message history of the room.
type Log interface {
	// Append stores msg and returns the new length.
	Append(msg Message) int
	// Snapshot returns a copy of all messages in append order.
	Snapshot() []Message
}

// MemoryLog keeps the history in process memory; it is lost on restart.
type MemoryLog struct {
	mu   sync.RWMutex
	msgs []Message
}

func NewMemoryLog(initial ...Message) *MemoryLog {
	return &MemoryLog{msgs: append([]Message(nil), initial...)}
}

func (l *MemoryLog) Append(msg Message) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
	return len(l.msgs)
}

func (l *MemoryLog) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}
