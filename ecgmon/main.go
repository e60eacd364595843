package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/ecg"
	"github.com/itohio/goecg/pkg/monitor"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use mocked device instead of serial port")
		loadFlag   = flag.String("load", "", "Review a recorded measurement file instead of measuring")
		scrubFlag  = flag.Int("scrub", 0, "Scrub position for review mode (0-100)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	controller := monitor.New(cfg)

	renderer := newConsoleRenderer(cfg)
	controller.OnFrame(renderer.Render)
	controller.OnAlert(func(a monitor.Alert) {
		log.Printf("%s: %s", a.Title, a.Message)
	})

	if *loadFlag != "" {
		runReview(controller, *loadFlag, *scrubFlag)
		return
	}

	runMeasurement(cfg, controller, *mockFlag)
}

// runReview loads a recorded measurement and renders the requested scrub
// window together with the metrics computed over the whole recording.
func runReview(controller *monitor.Controller, filename string, pos int) {
	samples, err := ecg.LoadRecording(filename)
	if err != nil {
		log.Fatalf("Failed to load recording %s: %v", filename, err)
	}

	if err := controller.LoadReview(samples); err != nil {
		log.Fatalf("Failed to review recording %s: %v", filename, err)
	}

	if pos != 0 {
		if err := controller.Scrub(pos); err != nil {
			log.Fatalf("Failed to scrub recording: %v", err)
		}
	}
}

// runMeasurement performs one timed live measurement: it attaches the
// transport, drives the controller on the configured tick period, and ends
// up scrubbed to the latest window.
func runMeasurement(cfg *config.Config, controller *monitor.Controller, useMock bool) {
	var device ecg.Device
	if useMock {
		device = ecg.NewMock(&cfg.Mock)
		log.Printf("Using mocked device")
	} else {
		device = ecg.New(cfg.Serial.Port, cfg.Serial.BaudRate, ecg.DefaultBufferSize)
		log.Printf("Using serial port %s", cfg.Serial.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go controller.RunIngestion(ctx)

	if err := controller.Start(device); err != nil {
		log.Fatalf("Failed to start measurement: %v", err)
	}

	ticker := time.NewTicker(cfg.Measurement.TickInterval)
	defer ticker.Stop()
	for range ticker.C {
		controller.Tick()
		if controller.State() != monitor.StateRecording {
			break
		}
	}

	if metrics, ok := controller.Metrics(); ok {
		log.Printf("Measurement finished: mean RR %.1f s, %d BPM", metrics.MeanRRSeconds, metrics.BPM)
	}

	// Show the newest window of the recorded trace before leaving.
	if err := controller.Scrub(100); err != nil {
		log.Printf("Failed to scrub trace: %v", err)
	}
	if err := controller.Reset(); err != nil {
		log.Printf("Failed to reset session: %v", err)
	}
}
