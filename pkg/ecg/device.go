package ecg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the measurement unit.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100

	// MaxReading is the largest valid amplitude value (12-bit ADC range).
	MaxReading = 4095
)

// Command is an in-band control code understood by the measurement unit.
type Command int

const (
	// StartMeasurement tells the unit to begin streaming readings.
	StartMeasurement Command = 1
	// StopMeasurement tells the unit to stop streaming readings.
	StopMeasurement Command = 2
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the ECG measurement unit.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	readings  chan uint16
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		readings:  make(chan uint16, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect connects to the serial port and starts reading amplitude values.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	// Start reading in a goroutine
	go d.readReadings()

	return nil
}

// Close closes the connection and stops reading.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Close serial port
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	// Close readings channel
	close(d.readings)

	return nil
}

// Readings returns the channel of parsed amplitude values.
func (d *Serial) Readings() <-chan uint16 {
	return d.readings
}

// SendCommand writes a control code to the measurement unit as ASCII text.
func (d *Serial) SendCommand(cmd Command) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := d.conn.Write([]byte(strconv.Itoa(int(cmd)) + "\n")); err != nil {
		return fmt.Errorf("failed to send command %d: %w", cmd, err)
	}

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readReadings reads lines from the serial port and parses them into amplitude values.
// Parse and transient read failures are logged and skipped; they never stop the loop.
func (d *Serial) readReadings() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readReadings: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil {
					if err != io.EOF {
						log.Printf("Error reading from serial port: %v", err)
					}
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			value, err := parseReading(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			// Send reading to channel (non-blocking)
			select {
			case d.readings <- value:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Readings channel full, dropping sample")
			}
		}
	}
}

// parseReading parses a line from the measurement unit into an amplitude value.
// Format: a single decimal integer in the 12-bit ADC range, e.g. "2048".
func parseReading(line string) (uint16, error) {
	value, err := strconv.ParseUint(line, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid reading: %w", err)
	}
	if value > MaxReading {
		return 0, fmt.Errorf("reading out of range: %d (max %d)", value, MaxReading)
	}

	return uint16(value), nil
}
