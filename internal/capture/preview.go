package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/tofgesture/internal/detector"
	"github.com/ayusman/tofgesture/internal/tof"
)

// PreviewScale is the size in pixels of one zone in a preview image.
const PreviewScale = 40

// RenderPreview draws f as a color-mapped JPEG, near zones hot and far or
// invalid zones cold, and circles the zone the hand was found in.
func RenderPreview(f *tof.DepthFrame, hand detector.HandState, sensor tof.SensorParams, maxRange float64) ([]byte, error) {
	if maxRange <= 0 {
		return nil, fmt.Errorf("preview: max range %v must be positive", maxRange)
	}

	small := gocv.NewMatWithSize(tof.Rows, tof.Cols, gocv.MatTypeCV8U)
	defer small.Close()
	for r := range f.Zones {
		for c, d := range f.Zones[r] {
			small.SetUCharAt(r, c, intensity(d, maxRange))
		}
	}

	big := gocv.NewMat()
	defer big.Close()
	size := image.Pt(tof.Cols*PreviewScale, tof.Rows*PreviewScale)
	gocv.Resize(small, &big, size, 0, 0, gocv.InterpolationNearestNeighbor)

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(big, &colored, gocv.ColormapJet)

	if pos, ok := hand.Position(); ok {
		if row, col, ok := tof.ZoneFor(pos.Theta, pos.Phi, sensor); ok {
			center := image.Pt(col*PreviewScale+PreviewScale/2, row*PreviewScale+PreviewScale/2)
			gocv.Circle(&colored, center, PreviewScale/3, color.RGBA{R: 255, G: 255, B: 255}, 3)
		}
	}

	buf, err := gocv.IMEncode(".jpg", colored)
	if err != nil {
		return nil, fmt.Errorf("preview: encode: %w", err)
	}
	defer buf.Close()

	return bytes.Clone(buf.GetBytes()), nil
}

// intensity maps a distance to 0..255, 255 at the sensor and 0 at maxRange
// or for invalid zones.
func intensity(d, maxRange float64) uint8 {
	if !tof.IsValidDistance(d) || d >= maxRange {
		return 0
	}
	return uint8(255 * (1 - d/maxRange))
}
