package ecg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/goecg/pkg/config"
)

// Mock simulates an ECG measurement unit for testing and development.
// Like the real firmware it only streams readings between a StartMeasurement
// and a StopMeasurement command.
type Mock struct {
	cfg *config.MockConfig

	readings  chan uint16
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	streaming bool

	// Simulation state
	phase float32 // Position within the current heartbeat cycle [0..1)
	seq   uint32  // Sample counter, drives the deterministic noise term
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			BPM:        75,
			Baseline:   1900,
			PeakLevel:  3000,
			NoiseLevel: 20,
			SampleRate: 2 * time.Millisecond,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		readings:  make(chan uint16, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.phase = 0
	m.seq = 0

	// Start generating readings
	go m.generateReadings()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	m.streaming = false
	close(m.readings)

	return nil
}

// Readings returns the channel of generated amplitude values.
func (m *Mock) Readings() <-chan uint16 {
	return m.readings
}

// SendCommand starts or stops the simulated stream.
func (m *Mock) SendCommand(cmd Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}

	switch cmd {
	case StartMeasurement:
		m.streaming = true
		m.phase = 0
	case StopMeasurement:
		m.streaming = false
	default:
		return fmt.Errorf("unknown command: %d", cmd)
	}

	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateReadings generates simulated readings at the configured rate.
func (m *Mock) generateReadings() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.mu.RLock()
			streaming := m.streaming
			m.mu.RUnlock()
			if !streaming {
				continue
			}

			reading := m.generateReading()
			select {
			case m.readings <- reading:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateReading produces the next sample of the synthetic waveform and
// advances the simulation.
//
// The waveform is a crude PQRST shape: a resting baseline with a narrow
// gaussian R spike, a shallow leading dip and a broad T bump, plus a slow
// baseline wander and deterministic noise. The R spike rises above the
// default upper detection threshold, the rest of the cycle stays below the
// lower one.
func (m *Mock) generateReading() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	cycleHz := float32(m.cfg.BPM) / 60.0
	m.phase += cycleHz * float32(m.cfg.SampleRate.Seconds())
	if m.phase >= 1.0 {
		m.phase -= 1.0
	}
	m.seq++

	t := m.phase
	amplitude := float32(m.cfg.PeakLevel - m.cfg.Baseline)

	value := float32(m.cfg.Baseline)
	value += 30 * math32.Sin(2*math32.Pi*0.25*t) // baseline wander
	value -= 0.15 * amplitude * gauss(t, 0.28, 0.015)
	value += amplitude * gauss(t, 0.32, 0.010) // R spike
	value -= 0.20 * amplitude * gauss(t, 0.36, 0.018)
	value += 0.12 * amplitude * gauss(t, 0.60, 0.060) // T bump

	// Deterministic noise term, repeatable across runs
	noise := float32(m.cfg.NoiseLevel) * math32.Sin(float32(m.seq)*12.9898)
	value += noise

	if value < 0 {
		value = 0
	} else if value > MaxReading {
		value = MaxReading
	}

	return uint16(value)
}

func gauss(x, mu, sigma float32) float32 {
	z := (x - mu) / sigma
	return math32.Exp(-0.5 * z * z)
}
