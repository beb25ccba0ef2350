package detector

import (
	"encoding/json"
	"fmt"

	"github.com/ayusman/tofgesture/internal/coords"
)

// HandState is either NotFound or Found with a position. The zero value is
// NotFound.
type HandState struct {
	pos   coords.Spherical
	found bool
}

// NotFound returns the state for a frame without a hand.
func NotFound() HandState {
	return HandState{}
}

// Found returns the state for a hand at p.
func Found(p coords.Spherical) HandState {
	return HandState{pos: p, found: true}
}

// Position returns the hand position and whether a hand was found.
func (h HandState) Position() (coords.Spherical, bool) {
	return h.pos, h.found
}

// IsFound reports whether a hand was found.
func (h HandState) IsFound() bool {
	return h.found
}

// Cartesian returns the hand position in cartesian coordinates.
func (h HandState) Cartesian() (coords.Cartesian, bool) {
	if !h.found {
		return coords.Cartesian{}, false
	}
	return h.pos.Cartesian(), true
}

func (h HandState) String() string {
	if !h.found {
		return "NotFound"
	}
	return fmt.Sprintf("Found(r=%.1f, theta=%.4f, phi=%.4f)", h.pos.R, h.pos.Theta, h.pos.Phi)
}

type handJSON struct {
	Found    bool              `json:"found"`
	Position *coords.Spherical `json:"position,omitempty"`
}

// MarshalJSON encodes the state as {"found": bool, "position": {...}}.
// The position is omitted when no hand was found.
func (h HandState) MarshalJSON() ([]byte, error) {
	v := handJSON{Found: h.found}
	if h.found {
		p := h.pos
		v.Position = &p
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (h *HandState) UnmarshalJSON(data []byte) error {
	var v handJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !v.Found {
		*h = NotFound()
		return nil
	}
	if v.Position == nil {
		return fmt.Errorf("hand state: found without position")
	}
	*h = Found(*v.Position)
	return nil
}
