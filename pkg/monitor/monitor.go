// Package monitor drives the acquisition-to-metrics pipeline: it owns the
// sample buffer lifecycle, advances the R-peak detector on a fixed external
// tick, decides when a timed measurement is finished, and publishes display
// frames and alerts to the rendering collaborators.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/detect"
	"github.com/itohio/goecg/pkg/ecg"
	"github.com/itohio/goecg/pkg/health"
	"github.com/itohio/goecg/pkg/scope"
	"github.com/itohio/goecg/pkg/trace"
)

// ErrInvalidState reports a session operation that is not allowed in the
// current state.
var ErrInvalidState = errors.New("invalid session state")

// State is the measurement session state.
type State int

const (
	// StateIdle means no session exists.
	StateIdle State = iota
	// StateRecording means samples are being acquired and processed.
	StateRecording
	// StateFinished means a recorded session ended and can be reviewed.
	StateFinished
	// StateReview means a loaded recording is being reviewed.
	StateReview
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinished:
		return "finished"
	case StateReview:
		return "review"
	default:
		return "unknown"
	}
}

// Frame is one refresh of the rendering surface: the display window, its
// time-axis labels (scrub mode only), and the current label strings.
type Frame struct {
	Window     scope.Window
	TimeLabels []string
	Countdown  string
	RRInterval string
	BPM        string
}

// Alert is a reportable error notification for the alert collaborator.
type Alert struct {
	Title   string
	Message string
}

// Metrics holds the last computed heart-rate metrics.
type Metrics struct {
	MeanRRSeconds float64
	BPM           int
}

const labelPlaceholder = "—"

// Controller is the measurement state machine. It is driven by an external
// tick source and fed by the ingestion loop; see RunIngestion.
type Controller struct {
	cfg *config.Config

	buf  *trace.Buffer
	det  *detect.Detector
	live *scope.LiveView

	mu         sync.RWMutex
	state      State
	dev        ecg.Device
	viewCursor int // Buffer index the live view has consumed up to

	lastMetricsSecond int
	metrics           Metrics
	hasMetrics        bool
	rrLabel           string
	bpmLabel          string
	alertedNoSignal   bool // Signal-processing alert already raised this session

	cbMu    sync.RWMutex
	onFrame []func(Frame)
	onAlert []func(Alert)
}

// New creates a controller with no attached device.
func New(cfg *config.Config) *Controller {
	return &Controller{
		cfg:      cfg,
		buf:      trace.NewBuffer(),
		det:      detect.New(cfg.Detector.UpperThreshold, cfg.Detector.LowerThreshold, cfg.Sampling.IntervalMillis),
		live:     scope.NewLiveView(cfg.Sampling.WindowSize),
		state:    StateIdle,
		rrLabel:  labelPlaceholder,
		bpmLabel: labelPlaceholder,
	}
}

// OnFrame registers a callback receiving every display refresh. Callbacks
// run outside the controller lock and should return quickly.
func (c *Controller) OnFrame(fn func(Frame)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.onFrame = append(c.onFrame, fn)
}

// OnAlert registers a callback receiving reportable errors.
func (c *Controller) OnAlert(fn func(Alert)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.onAlert = append(c.onAlert, fn)
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Buffer exposes the sample buffer for read access.
func (c *Controller) Buffer() *trace.Buffer {
	return c.buf
}

// Metrics returns the most recently computed metrics, if any.
func (c *Controller) Metrics() (Metrics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metrics, c.hasMetrics
}

// Start begins a new measurement session over the given transport. Valid
// only from the idle state. A connection failure is surfaced to the alert
// collaborator and the state stays idle.
func (c *Controller) Start(dev ecg.Device) error {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot start measurement while %s: %w", state, ErrInvalidState)
	}

	err := dev.Connect()
	if err == nil {
		err = dev.SendCommand(ecg.StartMeasurement)
	}
	if err != nil {
		c.mu.Unlock()
		c.emitAlert(Alert{
			Title:   "Connection error",
			Message: fmt.Sprintf("Measurement unit is not connected: %v.", err),
		})
		return fmt.Errorf("start measurement: %w", err)
	}

	c.resetSessionLocked()
	c.dev = dev
	c.state = StateRecording
	frame := c.liveFrameLocked()
	c.mu.Unlock()

	c.emitFrame(frame)
	return nil
}

// Tick advances the session. It is invoked by the external tick source on a
// fixed period and never blocks on I/O.
func (c *Controller) Tick() {
	var frames []Frame
	var alert *Alert

	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}

	if c.state == StateRecording {
		if c.elapsedLocked() == c.cfg.Measurement.DurationSeconds {
			// Exact-equality finish check, matching the device's fixed
			// sample rate. The final partial batch is left unprocessed.
			c.stopLocked()
			alert = c.computeMetricsLocked()
			frames = append(frames, c.scrubFrameLocked(0))
		} else {
			c.advanceLocked()
			alert = c.computeMetricsLocked()
			frames = append(frames, c.liveFrameLocked())
		}
	} else {
		alert = c.computeMetricsLocked()
	}
	c.mu.Unlock()

	for _, f := range frames {
		c.emitFrame(f)
	}
	if alert != nil {
		c.emitAlert(*alert)
	}
}

// Stop ends an active measurement early. Valid only while recording. The
// buffer stays available for scrubbing.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state != StateRecording {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot stop measurement while %s: %w", state, ErrInvalidState)
	}

	c.stopLocked()
	alert := c.computeMetricsLocked()
	frame := c.scrubFrameLocked(0)
	c.mu.Unlock()

	c.emitFrame(frame)
	if alert != nil {
		c.emitAlert(*alert)
	}
	return nil
}

// Scrub renders the window at the given position control value in [0, 100].
// Valid once a session is finished or a recording is loaded.
func (c *Controller) Scrub(pos int) error {
	if pos < 0 {
		pos = 0
	} else if pos > 100 {
		pos = 100
	}

	c.mu.Lock()
	if c.state != StateFinished && c.state != StateReview {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot scrub while %s: %w", state, ErrInvalidState)
	}
	frame := c.scrubFrameLocked(pos)
	c.mu.Unlock()

	c.emitFrame(frame)
	return nil
}

// LoadReview enters review mode over a previously recorded dataset. Valid
// only from the idle state; the dataset must cover at least one display
// window.
func (c *Controller) LoadReview(samples []uint16) error {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot load recording while %s: %w", state, ErrInvalidState)
	}

	if len(samples) < c.cfg.Sampling.WindowSize {
		c.mu.Unlock()
		c.emitAlert(Alert{
			Title:   "File loading error",
			Message: "The selected file does not contain enough data.",
		})
		return fmt.Errorf("recording has %d samples, need at least %d: %w",
			len(samples), c.cfg.Sampling.WindowSize, health.ErrInsufficientData)
	}

	c.resetSessionLocked()
	c.buf.Extend(samples)
	c.viewCursor = len(samples)
	c.det.Scan(c.buf.Snapshot())
	c.state = StateReview
	alert := c.computeMetricsLocked()
	frame := c.scrubFrameLocked(0)
	c.mu.Unlock()

	c.emitFrame(frame)
	if alert != nil {
		c.emitAlert(*alert)
	}
	return nil
}

// Reset returns to the idle state, releasing the transport and all session
// data.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.state != StateFinished && c.state != StateReview {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot reset while %s: %w", state, ErrInvalidState)
	}

	if c.dev != nil {
		if err := c.dev.Close(); err != nil {
			log.Printf("Error closing device: %v", err)
		}
		c.dev = nil
	}
	c.resetSessionLocked()
	c.state = StateIdle
	c.mu.Unlock()
	return nil
}

// RunIngestion continuously moves readings from the transport into the
// sample buffer. It runs for the life of the process, independent of
// session lifecycle: with no active session it idles, re-checking on a
// fixed interval. Read or parse failures are absorbed by the device layer;
// this loop only ever sees valid readings.
func (c *Controller) RunIngestion(ctx context.Context) {
	idle := c.cfg.Measurement.IngestIdleInterval
	for {
		readings := c.activeReadings()
		if readings == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idle):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case v, ok := <-readings:
			if !ok {
				// Transport went away; wait for the next session.
				select {
				case <-ctx.Done():
					return
				case <-time.After(idle):
				}
				continue
			}
			// Re-check so a stop becomes effective within one reading. A
			// single trailing append after stop is harmless: the buffer is
			// append-only and cleared at the next session start.
			if c.State() == StateRecording {
				c.buf.Append(v)
			}
		}
	}
}

// activeReadings returns the transport channel while a measurement is
// running, nil otherwise.
func (c *Controller) activeReadings() <-chan uint16 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateRecording || c.dev == nil || !c.dev.IsConnected() {
		return nil
	}
	return c.dev.Readings()
}

// elapsedLocked returns whole seconds of acquired data.
func (c *Controller) elapsedLocked() int {
	return c.buf.Len() / c.cfg.SampleRateHz()
}

// advanceLocked feeds newly arrived samples to the detector and shifts the
// live view.
func (c *Controller) advanceLocked() {
	snapshot := c.buf.Snapshot()
	if len(snapshot) > c.viewCursor {
		c.live.Advance(snapshot[c.viewCursor:])
		c.viewCursor = len(snapshot)
	}
	c.det.Scan(snapshot)
}

// stopLocked ends acquisition: the device is told to stop streaming and the
// session moves to the finished state. The device stays attached for review
// until Reset.
func (c *Controller) stopLocked() {
	if c.dev != nil && c.dev.IsConnected() {
		if err := c.dev.SendCommand(ecg.StopMeasurement); err != nil {
			log.Printf("Error sending stop command: %v", err)
		}
	}
	c.state = StateFinished
}

// computeMetricsLocked recomputes the heart-rate metrics when they are due:
// on the configured interval while recording, and unconditionally once the
// session is no longer recording. A session whose signal yields no
// detectable peaks is force-stopped and reported once.
func (c *Controller) computeMetricsLocked() *Alert {
	elapsed := c.elapsedLocked()
	due := c.state != StateRecording ||
		elapsed-c.lastMetricsSecond == c.cfg.Measurement.MetricsIntervalSeconds
	if !due || elapsed == 0 {
		return nil
	}
	c.lastMetricsSecond = elapsed

	mean, err := health.MeanRRIntervalSeconds(c.det.Intervals())
	if err != nil {
		return c.signalFailureLocked(err)
	}
	bpm, err := health.BPM(c.det.Count(), elapsed)
	if err != nil {
		return c.signalFailureLocked(err)
	}

	c.metrics = Metrics{MeanRRSeconds: mean, BPM: bpm}
	c.hasMetrics = true
	c.rrLabel = fmt.Sprintf("%.1f second", mean)
	c.bpmLabel = fmt.Sprintf("%d beats", bpm)
	return nil
}

// signalFailureLocked handles a metrics computation failure: the session is
// forcibly stopped and the failure reported exactly once.
func (c *Controller) signalFailureLocked(err error) *Alert {
	log.Printf("Signal processing failed: %v", err)
	if c.state == StateRecording {
		c.stopLocked()
	}
	if c.alertedNoSignal {
		return nil
	}
	c.alertedNoSignal = true
	return &Alert{
		Title:   "Signal processing error",
		Message: "The measured signal does not meet the requirements of a real ECG signal.",
	}
}

// resetSessionLocked clears all per-session state.
func (c *Controller) resetSessionLocked() {
	c.buf.Clear()
	c.det.Reset()
	c.live.Reset()
	c.viewCursor = 0
	c.lastMetricsSecond = 0
	c.metrics = Metrics{}
	c.hasMetrics = false
	c.rrLabel = labelPlaceholder
	c.bpmLabel = labelPlaceholder
	c.alertedNoSignal = false
}

// liveFrameLocked builds the right-aligned live frame. Live frames carry no
// time labels; the axis is only meaningful when scrubbing.
func (c *Controller) liveFrameLocked() Frame {
	return Frame{
		Window:     c.live.Window(),
		Countdown:  c.countdownLocked(),
		RRInterval: "RR interval: " + c.rrLabel,
		BPM:        "BPM: " + c.bpmLabel,
	}
}

// scrubFrameLocked builds the frame for a scrub position over the finished
// buffer. A buffer shorter than one window is left-padded with the ceiling
// value so the window length never changes.
func (c *Controller) scrubFrameLocked(pos int) Frame {
	size := c.cfg.Sampling.WindowSize
	total := c.buf.Len()

	var window scope.Window
	var labels []string
	if total >= size {
		from, to := scope.Scrub(total, size, pos)
		values, err := c.buf.Slice(from, to)
		if err != nil {
			// Cannot happen for a clamped range; keep the trace visible.
			log.Printf("Scrub window out of range: %v", err)
			values = make([]uint16, size)
		}
		window = scope.Window{From: from, To: to, Values: values}
		labels = scope.TimeLabels(to, size, c.cfg.Sampling.IntervalMillis)
	} else {
		values := make([]uint16, size-total, size)
		for i := range values {
			values[i] = ecg.MaxReading
		}
		values = append(values, c.buf.Snapshot()...)
		window = scope.Window{From: total - size, To: total, Values: values}
	}

	return Frame{
		Window:     window,
		TimeLabels: labels,
		Countdown:  c.countdownLocked(),
		RRInterval: "RR interval: " + c.rrLabel,
		BPM:        "BPM: " + c.bpmLabel,
	}
}

func (c *Controller) countdownLocked() string {
	if c.state == StateRecording {
		remaining := c.cfg.Measurement.DurationSeconds - c.elapsedLocked()
		return fmt.Sprintf("Time remaining: %d seconds", remaining)
	}
	return "Time remaining: " + labelPlaceholder
}

// emitFrame invokes the frame callbacks without holding the state lock.
func (c *Controller) emitFrame(f Frame) {
	c.cbMu.RLock()
	callbacks := make([]func(Frame), len(c.onFrame))
	copy(callbacks, c.onFrame)
	c.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(f)
		}
	}
}

// emitAlert invokes the alert callbacks without holding the state lock.
func (c *Controller) emitAlert(a Alert) {
	c.cbMu.RLock()
	callbacks := make([]func(Alert), len(c.onAlert))
	copy(callbacks, c.onAlert)
	c.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(a)
		}
	}
}
