// Package health derives heart-rate metrics from detected R-peak intervals.
package health

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientData reports that no peaks have been detected yet, or
	// that a dataset is too short to work with. Recoverable and reportable,
	// never fatal.
	ErrInsufficientData = errors.New("not enough data")

	// ErrZeroElapsed reports a BPM request before any full second of data
	// has been acquired.
	ErrZeroElapsed = errors.New("elapsed time is zero")
)

// MeanRRIntervalSeconds returns the arithmetic mean of the recorded
// inter-peak intervals, converted from milliseconds to seconds and rounded
// to one decimal.
func MeanRRIntervalSeconds(intervalsMillis []int) (float64, error) {
	if len(intervalsMillis) == 0 {
		return 0, ErrInsufficientData
	}

	var sum int
	for _, ms := range intervalsMillis {
		sum += ms
	}
	mean := float64(sum) / float64(len(intervalsMillis)) / 1000.0

	return math.Round(mean*10) / 10, nil
}

// BPM returns the heart rate in beats per minute, rounded down. The +1
// accounts for the implicit first beat before the first recorded interval.
func BPM(intervalCount, elapsedSeconds int) (int, error) {
	if elapsedSeconds == 0 {
		return 0, ErrZeroElapsed
	}

	return int(float64(intervalCount+1) / float64(elapsedSeconds) * 60), nil
}
