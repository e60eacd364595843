// Package trace holds the raw amplitude samples acquired during one
// measurement session.
package trace

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRange reports an out-of-bounds slice request.
var ErrRange = errors.New("slice out of range")

// Buffer is an append-only ordered sequence of amplitude samples shared
// between the ingestion loop (single writer) and the tick-driven readers.
// Indices are stable: once assigned, a value never changes until Clear.
type Buffer struct {
	mu   sync.RWMutex
	data []uint16
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		data: make([]uint16, 0, 1024),
	}
}

// Append adds a sample at the end of the buffer.
func (b *Buffer) Append(v uint16) {
	b.mu.Lock()
	b.data = append(b.data, v)
	b.mu.Unlock()
}

// Extend appends a batch of samples in order.
func (b *Buffer) Extend(vs []uint16) {
	b.mu.Lock()
	b.data = append(b.data, vs...)
	b.mu.Unlock()
}

// Len returns the number of samples currently stored.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// At returns the sample at index i.
func (b *Buffer) At(i int) (uint16, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i < 0 || i >= len(b.data) {
		return 0, fmt.Errorf("index %d of %d samples: %w", i, len(b.data), ErrRange)
	}
	return b.data[i], nil
}

// Slice returns a copy of the half-open range [from, to).
func (b *Buffer) Slice(from, to int) ([]uint16, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if from < 0 || to > len(b.data) || from > to {
		return nil, fmt.Errorf("slice [%d:%d) of %d samples: %w", from, to, len(b.data), ErrRange)
	}

	result := make([]uint16, to-from)
	copy(result, b.data[from:to])
	return result, nil
}

// Since returns a copy of all samples at index from and later. A from past
// the end yields an empty slice, so a reader holding a stale length is safe.
func (b *Buffer) Since(from int) []uint16 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if from < 0 {
		from = 0
	}
	if from >= len(b.data) {
		return nil
	}

	result := make([]uint16, len(b.data)-from)
	copy(result, b.data[from:])
	return result
}

// Snapshot returns a copy of the whole buffer.
func (b *Buffer) Snapshot() []uint16 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]uint16, len(b.data))
	copy(result, b.data)
	return result
}

// Clear removes all samples. Only the session lifecycle owner calls this.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.data = b.data[:0]
	b.mu.Unlock()
}
