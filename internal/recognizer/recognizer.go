// Package recognizer turns a stream of depth frames into gestures.
//
// A Recognizer is not safe for concurrent use. Callers that feed it from
// several goroutines must serialize access.
package recognizer

import (
	"fmt"

	"github.com/ayusman/tofgesture/internal/detector"
	"github.com/ayusman/tofgesture/internal/gesture"
	"github.com/ayusman/tofgesture/internal/history"
	"github.com/ayusman/tofgesture/internal/tof"
)

// Recognizer keeps the recent history of frames and classifies it on every
// update. The zero value is unconfigured: Update fails with ErrInitFailure
// until Reset succeeds.
type Recognizer struct {
	params     Params
	sensor     tof.SensorParams
	configured bool

	startMs      int64
	lastMs       int64
	measurements uint64

	history history.Ring[gesture.Entry]
}

// New returns a Recognizer configured with params and sensor and a start
// time of zero.
func New(params Params, sensor tof.SensorParams) (*Recognizer, error) {
	r := &Recognizer{}
	if err := r.Reset(params, sensor, 0); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset validates params and sensor and re-initializes r in place: history
// and measurement count are cleared and nowMs becomes the start time.
// On a validation error r keeps its previous state.
func (r *Recognizer) Reset(params Params, sensor tof.SensorParams, nowMs int64) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInitFailure, err)
	}
	if err := sensor.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInitFailure, err)
	}

	r.params = params
	r.sensor = sensor
	r.configured = true
	r.startMs = nowMs
	r.lastMs = nowMs
	r.measurements = 0
	r.history.Clear()
	return nil
}

// Update adds frame to the history and classifies it.
//
// frame.TimeMs must not be older than the previous accepted frame, or the
// start time for the first frame after Reset. Otherwise Update returns
// ErrInvalidInput and leaves r untouched.
//
// After a gesture is recognized the history is cleared so the same movement
// is reported only once.
func (r *Recognizer) Update(frame tof.DepthFrame) (Result, error) {
	if !r.configured {
		return DefaultResult(), fmt.Errorf("%w: not configured", ErrInitFailure)
	}
	if frame.TimeMs < r.lastMs {
		return DefaultResult(), fmt.Errorf("%w: time %d ms is before %d ms", ErrInvalidInput, frame.TimeMs, r.lastMs)
	}

	hand := detector.Locate(&frame, r.sensor, r.params.GestureThresholdDist)
	r.history.Push(gesture.Entry{Frame: frame, Hand: hand})
	r.lastMs = frame.TimeMs
	r.measurements++

	g := gesture.Classify(&r.history, r.params.Params)
	if g != gesture.None {
		r.history.Clear()
	}

	return Result{Hand: hand, Gesture: g}, nil
}

// Configured reports whether Reset has succeeded at least once.
func (r *Recognizer) Configured() bool {
	return r.configured
}

// Params returns the active recognizer parameters.
func (r *Recognizer) Params() Params {
	return r.params
}

// SensorParams returns the active sensor parameters.
func (r *Recognizer) SensorParams() tof.SensorParams {
	return r.sensor
}

// Measurements returns the number of frames accepted since the last Reset.
func (r *Recognizer) Measurements() uint64 {
	return r.measurements
}

// StartTimeMs returns the time passed to the last successful Reset.
func (r *Recognizer) StartTimeMs() int64 {
	return r.startMs
}

// LastTimeMs returns the time of the last accepted frame, or the start time
// if none was accepted since Reset.
func (r *Recognizer) LastTimeMs() int64 {
	return r.lastMs
}

// HistoryLen returns the number of entries currently held.
func (r *Recognizer) HistoryLen() int {
	return r.history.Len()
}

// History returns a copy of the held entries, oldest first.
func (r *Recognizer) History() []gesture.Entry {
	return r.history.Slice()
}
