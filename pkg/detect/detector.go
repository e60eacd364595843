// Package detect implements incremental R-peak detection over a growing
// sample sequence.
package detect

// Detector scans the unprocessed tail of the sample buffer and flags
// heartbeat events using a two-threshold hysteresis rule: a peak is declared
// on a local descending edge above the upper threshold, and the detector
// cannot re-arm until the signal has fallen below the lower threshold. A
// noisy plateau near one peak therefore produces a single event.
//
// State persists across scans; Reset starts a new session.
type Detector struct {
	upper uint16
	lower uint16

	intervalMillis int // Wall time represented by one sample

	armed         bool
	sinceLastPeak int
	lastProcessed int

	intervals []int // Milliseconds between consecutive peaks, in detection order
}

// New creates a detector with the given hysteresis thresholds and the
// sampling interval used to convert sample counts to milliseconds.
func New(upper, lower uint16, intervalMillis int) *Detector {
	return &Detector{
		upper:          upper,
		lower:          lower,
		intervalMillis: intervalMillis,
		armed:          true,
	}
}

// Scan processes samples in [lastProcessed, len(samples)-1). The open end
// excludes the newest sample: declaring a peak needs a look-ahead comparison
// with the next sample, so the final pair is left for the next scan.
func (d *Detector) Scan(samples []uint16) {
	end := len(samples) - 1
	for i := d.lastProcessed; i < end; i++ {
		d.sinceLastPeak++
		if d.armed && samples[i] > d.upper && samples[i] > samples[i+1] {
			d.intervals = append(d.intervals, d.sinceLastPeak*d.intervalMillis)
			d.sinceLastPeak = 0
			d.armed = false
		} else if samples[i] < d.lower {
			d.armed = true
		}
	}

	if end > d.lastProcessed {
		d.lastProcessed = end
	}
}

// Intervals returns a copy of the recorded inter-peak intervals in
// milliseconds.
func (d *Detector) Intervals() []int {
	result := make([]int, len(d.intervals))
	copy(result, d.intervals)
	return result
}

// Count returns the number of recorded intervals.
func (d *Detector) Count() int {
	return len(d.intervals)
}

// LastProcessed returns the index the next scan will start from.
func (d *Detector) LastProcessed() int {
	return d.lastProcessed
}

// Reset clears all detector state for a new session.
func (d *Detector) Reset() {
	d.armed = true
	d.sinceLastPeak = 0
	d.lastProcessed = 0
	d.intervals = d.intervals[:0]
}
