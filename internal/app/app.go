// Package app runs the depth-sensor gesture pipeline: frames from a capture
// source go through the recognizer, and recognized gestures are logged,
// stored and dispatched to plugins.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/tofgesture/internal/capture"
	"github.com/ayusman/tofgesture/internal/gesture"
	"github.com/ayusman/tofgesture/internal/plugin"
	"github.com/ayusman/tofgesture/internal/recognizer"
	"github.com/ayusman/tofgesture/internal/store"
	"github.com/ayusman/tofgesture/internal/tof"
)

// Pipeline defaults.
const (
	// IdleFPS is the ranging frequency when nothing moves.
	IdleFPS = 5
	// ActiveFPS is the ranging frequency while something moves.
	ActiveFPS = capture.DefaultFPS
	// IdleTimeoutMs is how long without activity, in sensor time, before
	// going back to IdleFPS.
	IdleTimeoutMs = 2000
	// DefaultActivityThreshold is the percentage of zones that must change.
	DefaultActivityThreshold = 5.0
	// DefaultPluginTimeoutMs bounds one plugin run.
	DefaultPluginTimeoutMs = 5000
)

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store
	PluginDir string
	Source    capture.Source

	Params      recognizer.Params
	Sensor      tof.SensorParams
	Orientation tof.Orientation

	IdleFPS           int
	ActiveFPS         int
	IdleTimeoutMs     int64
	ActivityThreshold float64 // percent of zones
	ActivityDiffMm    float64
	PluginTimeoutMs   int
}

// ResultFunc receives every recognizer result with the oriented frame it
// came from.
type ResultFunc func(recognizer.Result, tof.DepthFrame)

// App is the main application that orchestrates gesture recognition and
// action execution.
type App struct {
	config     Config
	source     capture.Source
	activity   *capture.ActivityDetector
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	// procMu serializes ProcessFrame; the recognizer is not safe for
	// concurrent use.
	procMu     sync.Mutex
	recognizer *recognizer.Recognizer
	mode       modeSwitch
	edge       edgeTrigger

	mu          sync.RWMutex
	enabled     bool
	stopCh      chan struct{}
	done        chan struct{}
	latest      recognizer.Result
	latestFrame tof.DepthFrame
	hasFrame    bool
	lastGesture gesture.Gesture
	onResult    []ResultFunc
	onFrame     []func(tof.DepthFrame)

	ctx     context.Context
	cancel  context.CancelFunc
	actions sync.WaitGroup
}

// New creates a new App with the given configuration. Zero values in config
// take the package defaults.
func New(config Config) (*App, error) {
	if config.Params == (recognizer.Params{}) {
		config.Params = recognizer.DefaultParams()
	}
	if config.Sensor == (tof.SensorParams{}) {
		config.Sensor = tof.DefaultSensorParams()
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	config.IdleFPS = min(config.IdleFPS, capture.MaxFPS)
	config.ActiveFPS = min(config.ActiveFPS, capture.MaxFPS)
	if config.IdleTimeoutMs <= 0 {
		config.IdleTimeoutMs = IdleTimeoutMs
	}
	if config.ActivityThreshold <= 0 {
		config.ActivityThreshold = DefaultActivityThreshold
	}
	if config.PluginTimeoutMs <= 0 {
		config.PluginTimeoutMs = DefaultPluginTimeoutMs
	}

	if err := config.Orientation.Validate(); err != nil {
		return nil, err
	}
	r, err := recognizer.New(config.Params, config.Sensor)
	if err != nil {
		return nil, fmt.Errorf("recognizer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config:     config,
		source:     config.Source,
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(config.PluginTimeoutMs),
		recognizer: r,
		mode:       modeSwitch{idleFPS: config.IdleFPS, activeFPS: config.ActiveFPS, timeoutMs: config.IdleTimeoutMs},
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// SetEnabled enables or disables gesture recognition. Frames read while
// disabled are dropped.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnResult registers fn to be called after every processed frame. Callbacks
// run on the pipeline goroutine and must not block.
func (a *App) OnResult(fn ResultFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onResult = append(a.onResult, fn)
}

// OnFrame registers fn to be called with every raw frame read from the
// source, before orientation.
func (a *App) OnFrame(fn func(tof.DepthFrame)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onFrame = append(a.onFrame, fn)
}

// LatestResult returns the result of the last processed frame.
func (a *App) LatestResult() recognizer.Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// LatestFrame returns the last processed frame, oriented.
func (a *App) LatestFrame() (tof.DepthFrame, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latestFrame, a.hasFrame
}

// LastGesture returns the most recent gesture other than None.
func (a *App) LastGesture() gesture.Gesture {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastGesture
}

// Status is a snapshot of the recognizer for reporting.
type Status struct {
	Enabled      bool              `json:"enabled"`
	Running      bool              `json:"running"`
	Active       bool              `json:"active"`
	FPS          int               `json:"fps"`
	Measurements uint64            `json:"measurements"`
	LastTimeMs   int64             `json:"last_time_ms"`
	HistoryLen   int               `json:"history_len"`
	Params       recognizer.Params `json:"params"`
	Sensor       tof.SensorParams  `json:"sensor"`
	Latest       recognizer.Result `json:"latest"`
	LastGesture  gesture.Gesture   `json:"last_gesture"`
}

// Status returns a snapshot of the pipeline.
func (a *App) Status() Status {
	a.procMu.Lock()
	s := Status{
		Active:       a.mode.active,
		FPS:          a.mode.fps(),
		Measurements: a.recognizer.Measurements(),
		LastTimeMs:   a.recognizer.LastTimeMs(),
		HistoryLen:   a.recognizer.HistoryLen(),
		Params:       a.recognizer.Params(),
		Sensor:       a.recognizer.SensorParams(),
	}
	a.procMu.Unlock()

	a.mu.RLock()
	defer a.mu.RUnlock()
	s.Enabled = a.enabled
	s.Running = a.running()
	s.Latest = a.latest
	s.LastGesture = a.lastGesture
	return s
}

// Reconfigure resets the recognizer with new parameters. On error the
// running configuration is kept.
func (a *App) Reconfigure(params recognizer.Params, sensor tof.SensorParams) error {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	if err := a.recognizer.Reset(params, sensor, a.recognizer.LastTimeMs()); err != nil {
		return err
	}
	a.edge = edgeTrigger{}
	return nil
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Source returns the capture source.
func (a *App) Source() capture.Source {
	return a.source
}

// Start opens the source and begins the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running() {
		return nil
	}
	a.reap()
	if a.source == nil {
		return fmt.Errorf("app: no capture source")
	}

	if err := a.source.Open(); err != nil {
		return err
	}
	if err := a.source.SetFPS(a.config.IdleFPS); err != nil {
		a.source.Close()
		return err
	}

	// Sensor time starts over with every session.
	a.procMu.Lock()
	if err := a.recognizer.Reset(a.recognizer.Params(), a.recognizer.SensorParams(), 0); err != nil {
		a.procMu.Unlock()
		a.source.Close()
		return err
	}
	a.mode.active = false
	a.edge = edgeTrigger{}
	a.procMu.Unlock()

	if a.activity == nil {
		a.activity = capture.NewActivityDetector(a.config.ActivityThreshold, a.config.ActivityDiffMm)
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	log.Println("Recognition pipeline started")
	return nil
}

// Stop halts the pipeline, waits for running actions and releases the
// source.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)

	// ReadFrame may block until the next frame; closing the source
	// unblocks it.
	if err := a.source.Close(); err != nil {
		log.Printf("Error closing source: %v", err)
	}
	<-done

	a.actions.Wait()

	a.mu.Lock()
	if a.activity != nil {
		a.activity.Close()
		a.activity = nil
	}
	a.mu.Unlock()

	log.Println("Recognition pipeline stopped")
}

// running reports whether the pipeline goroutine is still alive. Callers
// hold a.mu.
func (a *App) running() bool {
	if a.done == nil {
		return false
	}
	select {
	case <-a.done:
		return false
	default:
		return true
	}
}

// reap releases a pipeline that exited on its own at the end of a
// recording. Callers hold a.mu.
func (a *App) reap() {
	if a.stopCh == nil || a.running() {
		return
	}
	close(a.stopCh)
	a.stopCh, a.done = nil, nil

	if err := a.source.Close(); err != nil {
		log.Printf("Error closing source: %v", err)
	}
	if a.activity != nil {
		a.activity.Close()
		a.activity = nil
	}
}

// Close stops the pipeline and cancels running plugin actions.
func (a *App) Close() {
	a.cancel()
	a.Stop()
	a.actions.Wait()
}

// Done returns a channel closed when the running pipeline exits, either by
// Stop or because the source ran out of frames. It returns nil when the
// pipeline was never started or was stopped.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// WaitForActions blocks until every dispatched plugin action finished.
func (a *App) WaitForActions() {
	a.actions.Wait()
}
