package tof

import (
	"errors"
	"fmt"
)

// ErrInvalidOrientation is returned for a rotation that is not a multiple of 90.
var ErrInvalidOrientation = errors.New("invalid orientation")

// Orientation describes how the raw sensor grid has to be turned so that zone
// [0][0] ends up top-left as seen by the user. Mirroring is applied after the
// rotation.
type Orientation struct {
	Rotation       int  `json:"rotation"` // clockwise degrees: 0, 90, 180 or 270
	FlipHorizontal bool `json:"flip_horizontal"`
	FlipVertical   bool `json:"flip_vertical"`
}

// Validate checks the rotation angle.
func (o Orientation) Validate() error {
	switch o.Rotation {
	case 0, 90, 180, 270:
		return nil
	default:
		return fmt.Errorf("%w: rotation %d", ErrInvalidOrientation, o.Rotation)
	}
}

// Apply returns g re-oriented according to o.
func (o Orientation) Apply(g Grid) Grid {
	switch o.Rotation {
	case 90:
		g = Rotate90(g)
	case 180:
		g = Rotate180(g)
	case 270:
		g = Rotate270(g)
	}
	if o.FlipHorizontal {
		g = FlipHorizontal(g)
	}
	if o.FlipVertical {
		g = FlipVertical(g)
	}
	return g
}

// Transpose swaps rows and columns.
func Transpose(g Grid) Grid {
	var t Grid
	for r := range g {
		for c := range g[r] {
			t[c][r] = g[r][c]
		}
	}
	return t
}

// FlipHorizontal mirrors the grid left to right.
func FlipHorizontal(g Grid) Grid {
	for r := range g {
		for i, j := 0, Cols-1; i < j; i, j = i+1, j-1 {
			g[r][i], g[r][j] = g[r][j], g[r][i]
		}
	}
	return g
}

// FlipVertical mirrors the grid top to bottom.
func FlipVertical(g Grid) Grid {
	for i, j := 0, Rows-1; i < j; i, j = i+1, j-1 {
		g[i], g[j] = g[j], g[i]
	}
	return g
}

// Rotate90 rotates the grid 90 degrees clockwise.
func Rotate90(g Grid) Grid {
	return FlipHorizontal(Transpose(g))
}

// Rotate180 rotates the grid by 180 degrees.
func Rotate180(g Grid) Grid {
	return FlipHorizontal(FlipVertical(g))
}

// Rotate270 rotates the grid 90 degrees counter-clockwise.
func Rotate270(g Grid) Grid {
	return FlipVertical(Transpose(g))
}
