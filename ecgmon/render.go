package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/monitor"
	"github.com/itohio/goecg/pkg/scope"
)

const (
	plotWidth  = 100
	plotHeight = 12

	// Live frames arrive on every tick; redrawing the terminal that often
	// is useless, so live rendering is throttled. Scrub frames are user
	// driven and always drawn.
	liveRedrawInterval = 500 * time.Millisecond
)

// consoleRenderer draws display frames as an ASCII trace. It is the
// rendering collaborator of the measurement controller.
type consoleRenderer struct {
	cfg *config.Config

	mu       sync.Mutex
	lastDraw time.Time
	display  []uint16 // Reused downsampling buffer
	plotData []float64
}

func newConsoleRenderer(cfg *config.Config) *consoleRenderer {
	return &consoleRenderer{
		cfg:      cfg,
		display:  make([]uint16, 0, plotWidth),
		plotData: make([]float64, 0, plotWidth),
	}
}

// Render draws one frame.
func (r *consoleRenderer) Render(f monitor.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scrubbed := len(f.TimeLabels) > 0
	now := time.Now()
	if !scrubbed && now.Sub(r.lastDraw) < liveRedrawInterval {
		return
	}
	r.lastDraw = now

	r.display = scope.Downsample(r.display, f.Window.Values, plotWidth)
	r.plotData = r.plotData[:0]
	for _, v := range r.display {
		r.plotData = append(r.plotData, float64(v))
	}

	graph := asciigraph.Plot(r.plotData,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(0),
	)

	fmt.Println()
	fmt.Printf("%s | %s | %s\n", f.Countdown, f.RRInterval, f.BPM)
	fmt.Println(graph)
	if scrubbed {
		fmt.Printf("time (s): %s\n", strings.Join(f.TimeLabels, "  "))
	}
}
