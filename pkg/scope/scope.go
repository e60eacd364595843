// Package scope produces fixed-length views of the sample buffer for
// rendering, either a right-aligned live tail or a scrub position over a
// finished recording.
package scope

import (
	"math"
	"strconv"
)

// Window is a read-only projection of the sample buffer. Values always has
// exactly the configured window size.
type Window struct {
	From   int
	To     int
	Values []uint16
}

// LiveView maintains the window shown during an active measurement. Before
// any data arrives the window is synthesized as one floor sample followed by
// a flat ceiling line, so the trace renders flat instead of empty. As
// samples arrive the window shifts left by the count of new samples.
type LiveView struct {
	size   int
	values []uint16
	total  int // Samples consumed since Reset
}

// NewLiveView creates a live view with the given window size.
func NewLiveView(size int) *LiveView {
	v := &LiveView{
		size:   size,
		values: make([]uint16, size),
	}
	v.Reset()
	return v
}

// Reset restores the synthetic pre-acquisition window.
func (v *LiveView) Reset() {
	v.values = v.values[:0]
	v.values = append(v.values, 0)
	for i := 1; i < v.size; i++ {
		v.values = append(v.values, maxValue)
	}
	v.total = 0
}

const maxValue = 4095

// Advance shifts the window left by len(fresh) and appends the new samples,
// keeping exactly size values.
func (v *LiveView) Advance(fresh []uint16) {
	if len(fresh) == 0 {
		return
	}
	v.total += len(fresh)

	if len(fresh) >= v.size {
		copy(v.values, fresh[len(fresh)-v.size:])
		return
	}

	n := copy(v.values, v.values[len(fresh):])
	copy(v.values[n:], fresh)
}

// Window returns a copy of the current live window. From/To describe the
// buffer range once enough real samples exist; before that the window still
// contains synthetic padding and From is negative.
func (v *LiveView) Window() Window {
	values := make([]uint16, len(v.values))
	copy(values, v.values)
	return Window{
		From:   v.total - v.size,
		To:     v.total,
		Values: values,
	}
}

// Scrub maps a position control value in [0, 100] to a window over a
// finished dataset. When the mapped window would run past the end it is
// clamped so that to == total.
func Scrub(total, size, pos int) (from, to int) {
	jump := float64(total-size) / 100.0
	from = int(math.Round(float64(pos) * jump))
	if from < 0 {
		from = 0
	}

	if from+size > total {
		to = total
		from = to - size
	} else {
		to = from + size
	}
	return from, to
}

// TimeLabels returns the five x-axis tick labels for a window ending at
// sample index to: whole seconds at the window start, each quarter, and the
// end, derived from the sampling interval. Recompute whenever the window
// moves.
func TimeLabels(to, size, intervalMillis int) []string {
	labels := make([]string, 0, 5)
	for i := 4; i >= 0; i-- {
		at := to - i*size/4
		labels = append(labels, strconv.Itoa(at*intervalMillis/1000))
	}
	return labels
}

// Downsample decimates values to at most maxPoints for display.
// Destination-based: reuses dst when it has sufficient capacity.
func Downsample(dst []uint16, values []uint16, maxPoints int) []uint16 {
	if len(values) <= maxPoints {
		if cap(dst) >= len(values) {
			dst = dst[:len(values)]
			copy(dst, values)
			return dst
		}
		result := make([]uint16, len(values))
		copy(result, values)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]uint16, 0, maxPoints)
	}

	step := float64(len(values)) / float64(maxPoints)
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * step)
		if idx < len(values) {
			dst = append(dst, values[idx])
		}
	}

	return dst
}
