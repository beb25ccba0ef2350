package gesture

import (
	"math"

	"github.com/ayusman/tofgesture/internal/coords"
	"github.com/ayusman/tofgesture/internal/detector"
	"github.com/ayusman/tofgesture/internal/tof"
)

// epsilon absorbs rounding from the spherical round trip when comparing
// against travel and tolerance distances.
const epsilon = 1e-9

// Entry is one frame together with the hand state derived from it.
type Entry struct {
	Frame tof.DepthFrame
	Hand  detector.HandState
}

// TimeMs returns the capture time of the entry's frame.
func (e Entry) TimeMs() int64 {
	return e.Frame.TimeMs
}

// History is read access to time-ordered entries, newest at offset 0.
// *history.Ring[Entry] implements it.
type History interface {
	Len() int
	At(offset int) (Entry, bool)
}

// Classify returns the gesture the history currently shows. A static hold
// takes precedence over a swipe, and a horizontal swipe over a vertical one.
func Classify(h History, p Params) Gesture {
	if IsStaticHold(h, p) {
		return StaticHold
	}
	return ClassifySwipe(h, p)
}

// IsStaticHold reports whether the hand has stayed within
// StaticHoldToleranceDist of its latest position for at least
// StaticHoldTimeMs.
//
// The window starts at the newest entry and runs back to the first entry that
// is at least StaticHoldTimeMs older. Every entry in the window must have a
// hand. If the history does not reach that far back there is no hold yet.
func IsStaticHold(h History, p Params) bool {
	newest, ok := h.At(0)
	if !ok {
		return false
	}
	ref, found := newest.Hand.Cartesian()
	if !found {
		return false
	}

	for off := 0; off < h.Len(); off++ {
		e, _ := h.At(off)
		pos, found := e.Hand.Cartesian()
		if !found {
			return false
		}
		if coords.Distance(pos, ref) > p.StaticHoldToleranceDist+epsilon {
			return false
		}
		if newest.TimeMs()-e.TimeMs() >= p.StaticHoldTimeMs {
			return true
		}
	}
	return false
}

// ClassifySwipe looks at the run of consecutive entries with a hand that ends
// at the newest entry and returns the swipe it describes, or None.
//
// Travel is the displacement between the first and last positions of the run:
// Y for horizontal swipes, Z for vertical ones. While travelling, the other
// two axes must stay within SwipeToleranceDist of where the run started.
func ClassifySwipe(h History, p Params) Gesture {
	n := foundRun(h)
	if n < 2 {
		return None
	}

	first, _ := h.At(n - 1)
	last, _ := h.At(0)
	start, _ := first.Hand.Cartesian()
	end, _ := last.Hand.Cartesian()

	dy := end.Y - start.Y
	dz := end.Z - start.Z

	if math.Abs(dy) >= p.SwipeHorizontalTravelDist-epsilon &&
		withinTolerance(h, n, start, p.SwipeToleranceDist, axisX, axisZ) {
		if dy > 0 {
			return SwipeRight
		}
		return SwipeLeft
	}

	if math.Abs(dz) >= p.SwipeVerticalTravelDist-epsilon &&
		withinTolerance(h, n, start, p.SwipeToleranceDist, axisX, axisY) {
		if dz > 0 {
			return SwipeUp
		}
		return SwipeDown
	}

	return None
}

// foundRun returns the number of consecutive entries with a hand, counting
// back from the newest.
func foundRun(h History) int {
	n := 0
	for off := 0; off < h.Len(); off++ {
		e, _ := h.At(off)
		if !e.Hand.IsFound() {
			break
		}
		n++
	}
	return n
}

type axis func(coords.Cartesian) float64

func axisX(c coords.Cartesian) float64 { return c.X }
func axisY(c coords.Cartesian) float64 { return c.Y }
func axisZ(c coords.Cartesian) float64 { return c.Z }

// withinTolerance reports whether the newest n entries stay within tol of
// start on both axes.
func withinTolerance(h History, n int, start coords.Cartesian, tol float64, a, b axis) bool {
	for off := 0; off < n; off++ {
		e, _ := h.At(off)
		pos, _ := e.Hand.Cartesian()
		if math.Abs(a(pos)-a(start)) > tol+epsilon || math.Abs(b(pos)-b(start)) > tol+epsilon {
			return false
		}
	}
	return true
}
