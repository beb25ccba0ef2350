package tof

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSensorParams is returned when a sensor field of view is unusable.
var ErrInvalidSensorParams = errors.New("invalid sensor params")

// SensorParams describes the field of view of a sensor model.
// Angles are in radians.
type SensorParams struct {
	FOVHorizontal float64 `json:"fov_horizontal"`
	FOVVertical   float64 `json:"fov_vertical"`
}

// DefaultSensorParams returns the field of view of the ST VL53L5CX.
// Its 63 degree diagonal FOV gives 45 degrees per axis.
func DefaultSensorParams() SensorParams {
	return SensorParams{
		FOVHorizontal: math.Pi / 4,
		FOVVertical:   math.Pi / 4,
	}
}

// Validate checks that both angles lie in (0, pi).
func (p SensorParams) Validate() error {
	if !(p.FOVHorizontal > 0 && p.FOVHorizontal < math.Pi) {
		return fmt.Errorf("%w: fov_horizontal %v must be in (0, pi)", ErrInvalidSensorParams, p.FOVHorizontal)
	}
	if !(p.FOVVertical > 0 && p.FOVVertical < math.Pi) {
		return fmt.Errorf("%w: fov_vertical %v must be in (0, pi)", ErrInvalidSensorParams, p.FOVVertical)
	}
	return nil
}

// ZoneAngles returns the azimuth and zenith of the centre of the zone at row, col.
//
// The field of view is split evenly across the grid. Columns sweep the azimuth
// from left (negative) to right (positive); rows sweep the zenith from the top
// (below pi/2, pointing up) to the bottom.
func ZoneAngles(row, col int, p SensorParams) (theta, phi float64) {
	stepH := p.FOVHorizontal / Cols
	stepV := p.FOVVertical / Rows

	theta = (float64(col) + 0.5 - Cols/2.0) * stepH
	phi = math.Pi/2 + (float64(row)+0.5-Rows/2.0)*stepV
	return theta, phi
}

// ZoneFor returns the zone whose cone contains the direction (theta, phi).
// ok is false when the direction lies outside the field of view.
func ZoneFor(theta, phi float64, p SensorParams) (row, col int, ok bool) {
	stepH := p.FOVHorizontal / Cols
	stepV := p.FOVVertical / Rows

	c := math.Floor(theta/stepH + Cols/2.0)
	r := math.Floor((phi-math.Pi/2)/stepV + Rows/2.0)
	if c < 0 || c >= Cols || r < 0 || r >= Rows {
		return 0, 0, false
	}
	return int(r), int(c), true
}
