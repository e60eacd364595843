package ecg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInvalidContent reports a recording that is not a plain list of
// amplitude values, one per line.
var ErrInvalidContent = errors.New("recording has invalid content")

// ParseRecording reads a previously recorded measurement: ASCII text, one
// integer amplitude per line. Blank lines are skipped. Any unparseable or
// out-of-range line fails the whole recording with ErrInvalidContent.
func ParseRecording(r io.Reader) ([]uint16, error) {
	var values []uint16

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		value, err := parseReading(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", lineNo, err, ErrInvalidContent)
		}
		values = append(values, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}

	return values, nil
}

// LoadRecording reads a recording from a file.
func LoadRecording(filename string) ([]uint16, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	return ParseRecording(f)
}
