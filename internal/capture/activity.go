package capture

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/tofgesture/internal/tof"
)

// DefaultDiffThresholdMm is how much a zone has to change between frames to
// count as activity.
const DefaultDiffThresholdMm = 30

// ActivityDetector reports whether anything moved in front of the sensor by
// differencing consecutive frames. It drives the idle/active frame rate
// switch.
type ActivityDetector struct {
	threshold   float64 // percent of zones
	diffMm      float64
	prev        gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewActivityDetector returns a detector that fires when more than threshold
// percent of the zones changed by more than diffMm.
func NewActivityDetector(threshold, diffMm float64) *ActivityDetector {
	if diffMm <= 0 {
		diffMm = DefaultDiffThresholdMm
	}
	return &ActivityDetector{
		threshold: threshold,
		diffMm:    diffMm,
		prev:      gocv.NewMat(),
	}
}

// Detect compares f with the previous frame and returns whether activity was
// detected together with the percentage of zones that changed.
//
// Invalid zones count as zero distance, so a target appearing in or leaving
// a zone counts as a change. The first frame only sets the baseline.
func (a *ActivityDetector) Detect(f *tof.DepthFrame) (bool, float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cur := frameToMat(f)
	defer cur.Close()

	if !a.initialized {
		cur.CopyTo(&a.prev)
		a.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, a.prev, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, float32(a.diffMm), 1, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(thresh)
	changePercent := float64(changed) / float64(tof.Zones) * 100.0

	cur.CopyTo(&a.prev)

	return changePercent > a.threshold, changePercent
}

// Reset drops the baseline frame.
func (a *ActivityDetector) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.initialized = false
}

// Close releases the baseline frame.
func (a *ActivityDetector) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.prev.Empty() {
		a.prev.Close()
		a.prev = gocv.NewMat()
	}
	a.initialized = false
}

// SetThreshold sets the percentage of zones that must change. Values <= 0
// are ignored.
func (a *ActivityDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.threshold = threshold
}

// frameToMat copies the zone distances into a single-channel float Mat.
// The caller closes it.
func frameToMat(f *tof.DepthFrame) gocv.Mat {
	m := gocv.NewMatWithSize(tof.Rows, tof.Cols, gocv.MatTypeCV32F)
	for r := range f.Zones {
		for c, d := range f.Zones[r] {
			if !tof.IsValidDistance(d) {
				d = 0
			}
			m.SetFloatAt(r, c, float32(d))
		}
	}
	return m
}
