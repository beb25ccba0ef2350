package gesture

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid gesture params")

// Params holds the thresholds used by Classify. Distances are in millimetres.
type Params struct {
	// StaticHoldTimeMs is how long the hand has to stay in place.
	StaticHoldTimeMs int64 `json:"static_hold_time_ms"`

	// StaticHoldToleranceDist is how far the hand may drift from its latest
	// position during a hold.
	StaticHoldToleranceDist float64 `json:"static_hold_tolerance_dist"`

	// SwipeToleranceDist bounds the movement along the axes a swipe does not
	// travel on.
	SwipeToleranceDist float64 `json:"swipe_tolerance_dist"`

	// SwipeHorizontalTravelDist is the minimum travel for a left/right swipe.
	SwipeHorizontalTravelDist float64 `json:"swipe_horizontal_travel_dist"`

	// SwipeVerticalTravelDist is the minimum travel for an up/down swipe.
	SwipeVerticalTravelDist float64 `json:"swipe_vertical_travel_dist"`
}

// DefaultParams returns thresholds tuned for a hand 10 to 40 cm above the
// sensor.
func DefaultParams() Params {
	return Params{
		StaticHoldTimeMs:          1500,
		StaticHoldToleranceDist:   100,
		SwipeToleranceDist:        120,
		SwipeHorizontalTravelDist: 80,
		SwipeVerticalTravelDist:   70,
	}
}

// Validate checks that tolerances and the hold time are not negative and
// that travel distances are positive.
func (p Params) Validate() error {
	if p.StaticHoldTimeMs < 0 {
		return fmt.Errorf("%w: static_hold_time_ms %d is negative", ErrInvalidParams, p.StaticHoldTimeMs)
	}
	if !nonNegative(p.StaticHoldToleranceDist) {
		return fmt.Errorf("%w: static_hold_tolerance_dist %v", ErrInvalidParams, p.StaticHoldToleranceDist)
	}
	if !nonNegative(p.SwipeToleranceDist) {
		return fmt.Errorf("%w: swipe_tolerance_dist %v", ErrInvalidParams, p.SwipeToleranceDist)
	}
	if !positive(p.SwipeHorizontalTravelDist) {
		return fmt.Errorf("%w: swipe_horizontal_travel_dist %v", ErrInvalidParams, p.SwipeHorizontalTravelDist)
	}
	if !positive(p.SwipeVerticalTravelDist) {
		return fmt.Errorf("%w: swipe_vertical_travel_dist %v", ErrInvalidParams, p.SwipeVerticalTravelDist)
	}
	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
