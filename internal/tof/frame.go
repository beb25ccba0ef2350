// Package tof defines the depth frames produced by a multi-zone time-of-flight
// sensor and the geometry that maps sensor zones to directions in space.
package tof

import "math"

// Grid resolution. The VL53L5CX runs either 4x4 or 8x8; change Resolution to
// rebuild for a different sensor mode. Grids are always square.
const (
	Resolution = 8
	Rows       = Resolution
	Cols       = Resolution
	Zones      = Rows * Cols
)

// InvalidDistance marks a zone without a usable measurement.
const InvalidDistance = -1.0

// Grid holds one distance reading per zone in millimetres, indexed [row][col].
// Zone [0][0] is the top-left zone when looking at the sensor.
type Grid [Rows][Cols]float64

// DepthFrame is one complete sensor measurement.
type DepthFrame struct {
	Zones  Grid  `json:"zones"`
	TimeMs int64 `json:"time_ms"`
}

// InvalidFrame returns a frame whose zones are all set to InvalidDistance and
// whose timestamp is zero. Callers fill in the zones they measured.
func InvalidFrame() DepthFrame {
	var f DepthFrame
	for r := range f.Zones {
		for c := range f.Zones[r] {
			f.Zones[r][c] = InvalidDistance
		}
	}
	return f
}

// NewFrame returns a frame with the given zones and timestamp.
func NewFrame(zones Grid, timeMs int64) DepthFrame {
	return DepthFrame{Zones: zones, TimeMs: timeMs}
}

// IsValidDistance reports whether d is a usable reading.
// Zero is what the sensor reports when no target was detected.
func IsValidDistance(d float64) bool {
	return d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// Valid reports whether the zone at row, col holds a usable reading.
func (f *DepthFrame) Valid(row, col int) bool {
	return IsValidDistance(f.Zones[row][col])
}

// ValidCount returns the number of zones with a usable reading.
func (f *DepthFrame) ValidCount() int {
	n := 0
	for r := range f.Zones {
		for c := range f.Zones[r] {
			if IsValidDistance(f.Zones[r][c]) {
				n++
			}
		}
	}
	return n
}

// Nearest returns the zone with the smallest usable reading at or below
// maxDist. Ties go to the first zone in row-major order.
func (f *DepthFrame) Nearest(maxDist float64) (row, col int, dist float64, ok bool) {
	for r := range f.Zones {
		for c, d := range f.Zones[r] {
			if !IsValidDistance(d) || d > maxDist {
				continue
			}
			if !ok || d < dist {
				row, col, dist, ok = r, c, d, true
			}
		}
	}
	return row, col, dist, ok
}
