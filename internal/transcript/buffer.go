// Package transcript holds the rolling window of recent utterances fed to
// risk analysis. Each session owns one buffer.
package transcript

import (
	"strings"
	"sync"
	"time"
)

// DefaultCapacity is the number of utterances kept per session.
const DefaultCapacity = 6

type Entry struct {
	Timestamp time.Time
	Text      string
}

// Buffer is a fixed-capacity FIFO of transcript entries. The oldest entry is
// evicted when a new one arrives past capacity; a new entry is never dropped
// in favor of an old one.
type Buffer struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
	}
}

// Add appends a new entry stamped with the current time, evicting the oldest
// entry first if the buffer is full.
func (b *Buffer) Add(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) >= b.capacity {
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:len(b.entries)-1]
	}
	b.entries = append(b.entries, Entry{
		Timestamp: time.Now().UTC(),
		Text:      text,
	})
}

// Window returns the held entries' text joined oldest-first with newlines.
// This is the rolling context sent to the risk-scoring backend.
func (b *Buffer) Window() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	texts := make([]string, len(b.entries))
	for i, e := range b.entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, "\n")
}

// Entries returns a copy of the current entries, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	copied := make([]Entry, len(b.entries))
	copy(copied, b.entries)
	return copied
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
}
