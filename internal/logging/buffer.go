package logging

import (
	"sync"
	"time"
)

// LogEntry is one captured log record, kept for the history replay served
// over the log stream endpoint.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RingBuffer keeps the most recent log entries up to a fixed capacity. Safe
// for concurrent use; writers come from every module logger.
type RingBuffer struct {
	mu       sync.RWMutex
	entries  []LogEntry
	capacity int
	// next is the overwrite position once the buffer has filled, which is
	// also where the oldest entry lives.
	next int
}

// NewRingBuffer creates an empty buffer holding at most capacity entries.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		entries:  make([]LogEntry, 0, capacity),
		capacity: capacity,
	}
}

// Write appends an entry, evicting the oldest one once capacity is reached.
func (rb *RingBuffer) Write(entry LogEntry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if len(rb.entries) < rb.capacity {
		rb.entries = append(rb.entries, entry)
		return
	}

	rb.entries[rb.next] = entry
	rb.next = (rb.next + 1) % rb.capacity
}

// ReadAll returns a snapshot of the buffered entries, oldest first.
func (rb *RingBuffer) ReadAll() []LogEntry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if len(rb.entries) == 0 {
		return nil
	}

	out := make([]LogEntry, 0, len(rb.entries))
	out = append(out, rb.entries[rb.next:]...)
	out = append(out, rb.entries[:rb.next]...)
	return out
}

// Count returns how many entries the buffer currently holds.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return len(rb.entries)
}
