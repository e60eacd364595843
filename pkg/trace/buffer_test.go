package trace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_AppendAndLen(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, 0, b.Len())

	b.Append(100)
	b.Append(200)
	assert.Equal(t, 2, b.Len())

	b.Extend([]uint16{300, 400, 500})
	assert.Equal(t, 5, b.Len())
	assert.Equal(t, []uint16{100, 200, 300, 400, 500}, b.Snapshot())
}

func TestBuffer_Slice(t *testing.T) {
	b := NewBuffer()
	b.Extend([]uint16{10, 20, 30, 40, 50})

	tests := []struct {
		name    string
		from    int
		to      int
		want    []uint16
		wantErr bool
	}{
		{
			name: "middle range",
			from: 1,
			to:   4,
			want: []uint16{20, 30, 40},
		},
		{
			name: "full range",
			from: 0,
			to:   5,
			want: []uint16{10, 20, 30, 40, 50},
		},
		{
			name: "empty range",
			from: 2,
			to:   2,
			want: []uint16{},
		},
		{
			name:    "to past end",
			from:    0,
			to:      6,
			wantErr: true,
		},
		{
			name:    "negative from",
			from:    -1,
			to:      3,
			wantErr: true,
		},
		{
			name:    "inverted range",
			from:    4,
			to:      2,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Slice(tt.from, tt.to)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrRange)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBuffer_At(t *testing.T) {
	b := NewBuffer()
	b.Extend([]uint16{10, 20, 30})

	v, err := b.At(1)
	require.NoError(t, err)
	assert.Equal(t, uint16(20), v)

	_, err = b.At(3)
	assert.ErrorIs(t, err, ErrRange)
	_, err = b.At(-1)
	assert.ErrorIs(t, err, ErrRange)
}

func TestBuffer_Since(t *testing.T) {
	b := NewBuffer()
	b.Extend([]uint16{10, 20, 30})

	assert.Equal(t, []uint16{20, 30}, b.Since(1))
	assert.Equal(t, []uint16{10, 20, 30}, b.Since(0))
	assert.Nil(t, b.Since(3))
	// A stale reader index past the end is not an error
	assert.Nil(t, b.Since(10))
}

func TestBuffer_SliceIsACopy(t *testing.T) {
	b := NewBuffer()
	b.Extend([]uint16{10, 20, 30})

	got, err := b.Slice(0, 3)
	require.NoError(t, err)
	got[0] = 99

	assert.Equal(t, []uint16{10, 20, 30}, b.Snapshot())
}

func TestBuffer_Clear(t *testing.T) {
	b := NewBuffer()
	b.Extend([]uint16{10, 20, 30})

	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Snapshot())
}

// TestBuffer_ConcurrentAppendAndRead exercises the single-writer,
// multi-reader contract: readers always observe a consistent prefix.
func TestBuffer_ConcurrentAppendAndRead(t *testing.T) {
	b := NewBuffer()
	const n = 5000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			b.Append(uint16(i % 4096))
		}
	}()

	go func() {
		defer wg.Done()
		for b.Len() < n {
			snapshot := b.Snapshot()
			for i, v := range snapshot {
				if v != uint16(i%4096) {
					t.Errorf("index %d: got %d, want %d", i, v, i%4096)
					return
				}
			}
		}
	}()

	wg.Wait()
	assert.Equal(t, n, b.Len())
}
