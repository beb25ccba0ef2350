// Package detector finds a hand in a depth frame.
package detector

import (
	"github.com/ayusman/tofgesture/internal/coords"
	"github.com/ayusman/tofgesture/internal/tof"
)

// Localizer picks the hand position out of a depth frame.
type Localizer struct {
	// Sensor is the field of view used to turn zone indices into angles.
	Sensor tof.SensorParams

	// ThresholdDist is the maximum distance (mm) at which a target counts as
	// a hand. Zones further away are ignored.
	ThresholdDist float64
}

// Locate returns the position of the closest usable zone within the
// threshold, treating it as the leading edge of the hand.
func (l Localizer) Locate(frame *tof.DepthFrame) HandState {
	return Locate(frame, l.Sensor, l.ThresholdDist)
}

// Locate scans every zone of frame and returns Found for the nearest zone
// whose distance is usable and at most threshold. Ties go to the first zone
// in row-major order. If no zone qualifies it returns NotFound.
func Locate(frame *tof.DepthFrame, sensor tof.SensorParams, threshold float64) HandState {
	row, col, dist, ok := frame.Nearest(threshold)
	if !ok {
		return NotFound()
	}

	theta, phi := tof.ZoneAngles(row, col, sensor)
	return Found(coords.Spherical{R: dist, Theta: theta, Phi: phi})
}
