// Package plugin discovers executable action plugins and runs them when a
// gesture is recognized.
package plugin

import (
	"encoding/json"
	"slices"

	"github.com/ayusman/tofgesture/internal/detector"
	"github.com/ayusman/tofgesture/internal/gesture"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
	// Gestures limits the gestures the plugin may be bound to. Empty means
	// any gesture.
	Gestures     []string        `json:"gestures,omitempty"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the plugin declares action.
func (m Manifest) Supports(action string) bool {
	return slices.Contains(m.Actions, action)
}

// Accepts reports whether the plugin may be bound to the named gesture.
func (m Manifest) Accepts(gestureName string) bool {
	return len(m.Gestures) == 0 || slices.Contains(m.Gestures, gestureName)
}

// Hand is the hand position sent to a plugin, in both spherical and
// Cartesian form. Distances are in millimetres, angles in radians.
type Hand struct {
	R     float64 `json:"r"`
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action  string `json:"action"`
	Gesture string `json:"gesture"`
	// Hand is nil when no hand was found in the frame that completed the
	// gesture.
	Hand   *Hand           `json:"hand,omitempty"`
	TimeMs int64           `json:"time_ms"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params,omitempty"`
}

// NewRequest builds the request for a recognized gesture.
func NewRequest(action string, g gesture.Gesture, hand detector.HandState, timeMs int64, config json.RawMessage) *Request {
	req := &Request{
		Action:  action,
		Gesture: g.String(),
		TimeMs:  timeMs,
		Config:  config,
	}
	pos, found := hand.Position()
	if c, ok := hand.Cartesian(); found && ok {
		req.Hand = &Hand{R: pos.R, Theta: pos.Theta, Phi: pos.Phi, X: c.X, Y: c.Y, Z: c.Z}
	}
	return req
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
