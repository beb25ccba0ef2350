// Package gesture classifies a history of hand positions into a gesture.
package gesture

import (
	"errors"
	"fmt"
)

// ErrUnknownGesture is returned when parsing a name that is not a gesture.
var ErrUnknownGesture = errors.New("unknown gesture")

// Gesture is the outcome of one classification.
type Gesture int

const (
	// None means nothing was recognized.
	None Gesture = iota
	// StaticHold means the hand stayed in place for the hold time.
	StaticHold
	// SwipeRight is a horizontal swipe towards +Y.
	SwipeRight
	// SwipeLeft is a horizontal swipe towards -Y.
	SwipeLeft
	// SwipeUp is a vertical swipe towards +Z.
	SwipeUp
	// SwipeDown is a vertical swipe towards -Z.
	SwipeDown
)

var names = [...]string{
	None:       "none",
	StaticHold: "static_hold",
	SwipeRight: "swipe_right",
	SwipeLeft:  "swipe_left",
	SwipeUp:    "swipe_up",
	SwipeDown:  "swipe_down",
}

// All returns every gesture except None.
func All() []Gesture {
	return []Gesture{StaticHold, SwipeRight, SwipeLeft, SwipeUp, SwipeDown}
}

func (g Gesture) String() string {
	if g < 0 || int(g) >= len(names) {
		return fmt.Sprintf("gesture(%d)", int(g))
	}
	return names[g]
}

// IsSwipe reports whether g is one of the four swipes.
func (g Gesture) IsSwipe() bool {
	return g >= SwipeRight && g <= SwipeDown
}

// ParseGesture returns the gesture with the given name.
func ParseGesture(name string) (Gesture, error) {
	for i, n := range names {
		if n == name {
			return Gesture(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownGesture, name)
}

// MarshalText encodes g by name.
func (g Gesture) MarshalText() ([]byte, error) {
	if g < 0 || int(g) >= len(names) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGesture, int(g))
	}
	return []byte(names[g]), nil
}

// UnmarshalText decodes a gesture name.
func (g *Gesture) UnmarshalText(text []byte) error {
	v, err := ParseGesture(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
