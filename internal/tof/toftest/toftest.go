// Package toftest builds synthetic depth frames for tests.
package toftest

import "github.com/ayusman/tofgesture/internal/tof"

// Empty returns a frame with no valid zones at timeMs.
func Empty(timeMs int64) tof.DepthFrame {
	f := tof.InvalidFrame()
	f.TimeMs = timeMs
	return f
}

// Filled returns a frame with every zone at dist.
func Filled(dist float64, timeMs int64) tof.DepthFrame {
	var f tof.DepthFrame
	for r := range f.Zones {
		for c := range f.Zones[r] {
			f.Zones[r][c] = dist
		}
	}
	f.TimeMs = timeMs
	return f
}

// HandAt returns a frame where only the zone at row, col sees a target at dist.
func HandAt(row, col int, dist float64, timeMs int64) tof.DepthFrame {
	f := Empty(timeMs)
	f.Zones[row][col] = dist
	return f
}

// Hold returns n frames with the hand fixed at row, col, spaced stepMs apart.
func Hold(row, col int, dist float64, startMs, stepMs int64, n int) []tof.DepthFrame {
	frames := make([]tof.DepthFrame, n)
	for i := range frames {
		frames[i] = HandAt(row, col, dist, startMs+int64(i)*stepMs)
	}
	return frames
}

// SweepColumns returns frames with the hand moving along row from column
// fromCol to toCol, one column per frame.
func SweepColumns(row, fromCol, toCol int, dist float64, startMs, stepMs int64) []tof.DepthFrame {
	var frames []tof.DepthFrame
	step := 1
	if toCol < fromCol {
		step = -1
	}
	t := startMs
	for c := fromCol; ; c += step {
		frames = append(frames, HandAt(row, c, dist, t))
		t += stepMs
		if c == toCol {
			break
		}
	}
	return frames
}

// SweepRows returns frames with the hand moving along col from row fromRow
// to toRow, one row per frame.
func SweepRows(col, fromRow, toRow int, dist float64, startMs, stepMs int64) []tof.DepthFrame {
	var frames []tof.DepthFrame
	step := 1
	if toRow < fromRow {
		step = -1
	}
	t := startMs
	for r := fromRow; ; r += step {
		frames = append(frames, HandAt(r, col, dist, t))
		t += stepMs
		if r == toRow {
			break
		}
	}
	return frames
}

// Gap returns n empty frames spaced stepMs apart.
func Gap(startMs, stepMs int64, n int) []tof.DepthFrame {
	frames := make([]tof.DepthFrame, n)
	for i := range frames {
		frames[i] = Empty(startMs + int64(i)*stepMs)
	}
	return frames
}
