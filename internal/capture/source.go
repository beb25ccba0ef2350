// Package capture reads depth frames from a time-of-flight sensor, either over
// a serial link or from a recording.
package capture

import (
	"errors"

	"github.com/ayusman/tofgesture/internal/tof"
)

// Default ranging settings.
const (
	DefaultFPS = 30
	// MaxFPS is the highest ranging frequency the sensor board accepts.
	MaxFPS = 60
)

var (
	// ErrSourceNotOpen is returned when reading from a source that is not open.
	ErrSourceNotOpen = errors.New("source is not open")

	// ErrEndOfRecording is returned by a non-looping MockSource once every
	// frame was read.
	ErrEndOfRecording = errors.New("end of recording")
)

// Source produces depth frames.
type Source interface {
	Open() error
	Close() error
	// ReadFrame blocks until the next frame is available.
	ReadFrame() (tof.DepthFrame, error)
	// SetFPS changes the ranging frequency. When it fails the source keeps
	// its previous rate, and FPS reports that rate.
	SetFPS(fps int) error
	FPS() int
	IsOpen() bool
}

// clampFPS limits fps to [1, MaxFPS]. Zero or negative values return 0 so
// callers can ignore them.
func clampFPS(fps int) int {
	if fps <= 0 {
		return 0
	}
	return min(fps, MaxFPS)
}
