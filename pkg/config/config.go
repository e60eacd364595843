package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Sampling    SamplingConfig    `yaml:"sampling"`
	Detector    DetectorConfig    `yaml:"detector"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Mock        MockConfig        `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SamplingConfig describes the sensor sampling and display geometry.
type SamplingConfig struct {
	IntervalMillis int `yaml:"interval_millis"` // Time between two samples on the wire
	WindowSize     int `yaml:"window_size"`     // Number of samples shown at once
}

// DetectorConfig contains the R-peak hysteresis thresholds (12-bit ADC scale).
type DetectorConfig struct {
	UpperThreshold uint16 `yaml:"upper_threshold"`
	LowerThreshold uint16 `yaml:"lower_threshold"`
}

// MeasurementConfig contains measurement session parameters.
type MeasurementConfig struct {
	DurationSeconds        int           `yaml:"duration_seconds"`
	MetricsIntervalSeconds int           `yaml:"metrics_interval_seconds"`
	TickInterval           time.Duration `yaml:"tick_interval"`
	IngestIdleInterval     time.Duration `yaml:"ingest_idle_interval"`
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	BPM        float64       `yaml:"bpm"`         // Simulated heart rate
	Baseline   uint16        `yaml:"baseline"`    // Resting signal level (ADC counts)
	PeakLevel  uint16        `yaml:"peak_level"`  // R-peak amplitude (ADC counts)
	NoiseLevel float64       `yaml:"noise_level"` // Noise amplitude (ADC counts)
	SampleRate time.Duration `yaml:"sample_rate"` // Time between generated samples
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Sampling: SamplingConfig{
			IntervalMillis: 2, // 500 Hz
			WindowSize:     2000,
		},
		Detector: DetectorConfig{
			UpperThreshold: 2600,
			LowerThreshold: 2000,
		},
		Measurement: MeasurementConfig{
			DurationSeconds:        30,
			MetricsIntervalSeconds: 3,
			TickInterval:           100 * time.Millisecond,
			IngestIdleInterval:     500 * time.Millisecond,
		},
		Mock: MockConfig{
			BPM:        75,
			Baseline:   1900,
			PeakLevel:  3000,
			NoiseLevel: 20,
			SampleRate: 2 * time.Millisecond,
		},
	}
}

// SampleRateHz returns the acquisition rate derived from the sampling interval.
func (c *Config) SampleRateHz() int {
	return 1000 / c.Sampling.IntervalMillis
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sampling.IntervalMillis == 0 {
		c.Sampling.IntervalMillis = def.Sampling.IntervalMillis
	}
	if c.Sampling.WindowSize == 0 {
		c.Sampling.WindowSize = def.Sampling.WindowSize
	}

	if c.Detector.UpperThreshold == 0 {
		c.Detector.UpperThreshold = def.Detector.UpperThreshold
	}
	if c.Detector.LowerThreshold == 0 {
		c.Detector.LowerThreshold = def.Detector.LowerThreshold
	}

	if c.Measurement.DurationSeconds == 0 {
		c.Measurement.DurationSeconds = def.Measurement.DurationSeconds
	}
	if c.Measurement.MetricsIntervalSeconds == 0 {
		c.Measurement.MetricsIntervalSeconds = def.Measurement.MetricsIntervalSeconds
	}
	if c.Measurement.TickInterval == 0 {
		c.Measurement.TickInterval = def.Measurement.TickInterval
	}
	if c.Measurement.IngestIdleInterval == 0 {
		c.Measurement.IngestIdleInterval = def.Measurement.IngestIdleInterval
	}

	if c.Mock.BPM == 0 {
		c.Mock.BPM = def.Mock.BPM
	}
	if c.Mock.Baseline == 0 {
		c.Mock.Baseline = def.Mock.Baseline
	}
	if c.Mock.PeakLevel == 0 {
		c.Mock.PeakLevel = def.Mock.PeakLevel
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
