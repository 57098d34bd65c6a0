package chatlog

import (
	"strings"
	"sync"

	"twitchchat/internal/app/domain"
)

const DefaultSize = 100

// Log keeps the most recent messages in arrival order. One goroutine writes;
// snapshots may be taken from anywhere.
type Log struct {
	mu    sync.RWMutex
	items []domain.TwitchMessage
	size  int
}

func New(size int) *Log {
	if size < 1 {
		size = DefaultSize
	}
	return &Log{
		items: make([]domain.TwitchMessage, 0, size),
		size:  size,
	}
}

// Add appends msg and evicts the oldest entry beyond capacity.
func (l *Log) Add(msg domain.TwitchMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) == l.size {
		copy(l.items, l.items[1:])
		l.items = l.items[:len(l.items)-1]
	}
	l.items = append(l.items, msg)
}

// RemoveByID drops the chat message with the given id and reports whether it existed.
func (l *Log) RemoveByID(id string) bool {
	if id == "" {
		return false
	}
	return l.removeWhere(func(m domain.ChatMessage) bool { return m.ID == id }) > 0
}

// RemoveByUser drops every chat message by displayName, ignoring case.
func (l *Log) RemoveByUser(displayName string) int {
	if displayName == "" {
		return 0
	}
	return l.removeWhere(func(m domain.ChatMessage) bool {
		return strings.EqualFold(m.DisplayName, displayName)
	})
}

func (l *Log) removeWhere(match func(domain.ChatMessage) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.items[:0]
	for _, item := range l.items {
		if chat, ok := item.(domain.ChatMessage); ok && match(chat) {
			continue
		}
		kept = append(kept, item)
	}

	removed := len(l.items) - len(kept)
	clear(l.items[len(kept):])
	l.items = kept
	return removed
}

// Snapshot returns a copy, oldest first.
func (l *Log) Snapshot() []domain.TwitchMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.TwitchMessage, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.items)
}

func (l *Log) Cap() int {
	return l.size
}
