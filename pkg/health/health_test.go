package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanRRIntervalSeconds(t *testing.T) {
	tests := []struct {
		name      string
		intervals []int
		want      float64
		wantErr   error
	}{
		{
			name:      "resting rhythm",
			intervals: []int{800, 820, 810},
			want:      0.8,
		},
		{
			name:      "single interval",
			intervals: []int{1000},
			want:      1.0,
		},
		{
			name:      "rounds to one decimal",
			intervals: []int{740, 760},
			want:      0.8,
		},
		{
			name:      "rounds down below midpoint",
			intervals: []int{640, 660, 620},
			want:      0.6,
		},
		{
			name:    "no intervals",
			wantErr: ErrInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MeanRRIntervalSeconds(tt.intervals)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestBPM(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		elapsed int
		want    int
		wantErr error
	}{
		{
			name:    "sixty beats per minute",
			count:   9,
			elapsed: 10,
			want:    60,
		},
		{
			name:    "truncates fractional rate",
			count:   37,
			elapsed: 30,
			want:    76,
		},
		{
			name:    "no intervals still counts the first beat",
			count:   0,
			elapsed: 3,
			want:    20,
		},
		{
			name:    "zero elapsed",
			count:   5,
			elapsed: 0,
			wantErr: ErrZeroElapsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BPM(tt.count, tt.elapsed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
