// Package notify carries transient user-facing notifications (the toast
// channel). Gateway and store failures publish here; the front end renders
// whatever arrives. Field-level validation feedback stays out of this bus.
package notify

import (
	"context"
	"sync"
	"time"

	"opsdeck.io/internal/ids"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one transient notification.
type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Bus fan-outs notices to all active subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Notice
	next   int
	recent []Notice
}

const recentLimit = 50

func New() *Bus {
	return &Bus{subs: make(map[int]chan Notice)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// notices. The channel is closed when the provided context ends.
func (b *Bus) Subscribe(ctx context.Context) <-chan Notice {
	ch := make(chan Notice, 16)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs a notice to all subscribers and records it in the recent
// ring.
func (b *Bus) Publish(level Level, message string) Notice {
	n := Notice{
		ID:      ids.New(),
		Level:   level,
		Message: message,
		Time:    time.Now().UTC(),
	}

	b.mu.Lock()
	b.recent = append(b.recent, n)
	if len(b.recent) > recentLimit {
		b.recent = b.recent[len(b.recent)-recentLimit:]
	}
	b.mu.Unlock()

	// Send under the read lock: unsubscribe closes channels under the full
	// lock, so a channel present in subs here cannot be closed mid-send.
	b.mu.RLock()
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
			// Drop when subscriber is slow to avoid blocking callers.
		}
	}
	b.mu.RUnlock()
	return n
}

func (b *Bus) Info(message string) Notice    { return b.Publish(LevelInfo, message) }
func (b *Bus) Success(message string) Notice { return b.Publish(LevelSuccess, message) }
func (b *Bus) Warning(message string) Notice { return b.Publish(LevelWarning, message) }
func (b *Bus) Error(message string) Notice   { return b.Publish(LevelError, message) }

// Recent returns a copy of the most recent notices, oldest first.
func (b *Bus) Recent() []Notice {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Notice, len(b.recent))
	copy(out, b.recent)
	return out
}
