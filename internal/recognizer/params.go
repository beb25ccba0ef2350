package recognizer

import (
	"fmt"
	"math"

	"github.com/ayusman/tofgesture/internal/detector"
	"github.com/ayusman/tofgesture/internal/gesture"
	"github.com/ayusman/tofgesture/internal/tof"
)

// Params configures a Recognizer.
type Params struct {
	// GestureThresholdDist is the maximum range (mm) at which a target is
	// treated as a hand.
	GestureThresholdDist float64 `json:"gesture_threshold_dist"`

	gesture.Params
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		GestureThresholdDist: 400,
		Params:               gesture.DefaultParams(),
	}
}

// Validate checks every field.
func (p Params) Validate() error {
	if !(p.GestureThresholdDist > 0) || math.IsInf(p.GestureThresholdDist, 0) {
		return fmt.Errorf("%w: gesture_threshold_dist %v must be positive", gesture.ErrInvalidParams, p.GestureThresholdDist)
	}
	return p.Params.Validate()
}

// Result is what one Update produces.
type Result struct {
	Hand    detector.HandState `json:"hand"`
	Gesture gesture.Gesture    `json:"gesture"`
}

// DefaultResult returns {NotFound, None}.
func DefaultResult() Result {
	return Result{Hand: detector.NotFound(), Gesture: gesture.None}
}

// InvalidMeasurement returns a frame with every zone marked invalid, for
// callers to fill in.
func InvalidMeasurement() tof.DepthFrame {
	return tof.InvalidFrame()
}

// DefaultSensorParams returns the field of view of the default sensor.
func DefaultSensorParams() tof.SensorParams {
	return tof.DefaultSensorParams()
}
