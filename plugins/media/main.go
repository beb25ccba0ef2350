// Package main provides a media plugin for macOS. It maps gestures to volume
// and playback controls via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// actionScripts maps action names to AppleScript.
var actionScripts = map[string]string{
	"volume-up":        `set volume output volume ((output volume of (get volume settings)) + 10)`,
	"volume-down":      `set volume output volume ((output volume of (get volume settings)) - 10)`,
	"volume-mute":      `set volume output muted (not (output muted of (get volume settings)))`,
	"media-play-pause": keyCode(100),
	"media-next":       keyCode(101),
	"media-prev":       keyCode(98),
}

// gestureActions is what the "auto" action does for each gesture.
var gestureActions = map[string]string{
	"swipe_right": "media-next",
	"swipe_left":  "media-prev",
	"swipe_up":    "volume-up",
	"swipe_down":  "volume-down",
	"static_hold": "media-play-pause",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	action, err := resolve(req)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	if err := runAppleScript(actionScripts[action]); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", action, err)})
		return
	}

	data, _ := json.Marshal(map[string]string{"action": action})
	writeResponse(Response{Success: true, Data: data})
}

// resolve returns the concrete action for req, mapping "auto" through the
// gesture.
func resolve(req Request) (string, error) {
	action := req.Action
	if action == "auto" {
		mapped, ok := gestureActions[req.Gesture]
		if !ok {
			return "", fmt.Errorf("no media action for gesture %q", req.Gesture)
		}
		action = mapped
	}
	if _, ok := actionScripts[action]; !ok {
		return "", fmt.Errorf("unknown action: %s", action)
	}
	return action, nil
}

// writeResponse writes a response to stdout.
func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	if runtime.GOOS != "darwin" {
		return fmt.Errorf("media plugin requires macOS")
	}
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// keyCode presses a media key.
func keyCode(code int) string {
	return fmt.Sprintf("tell application \"System Events\"\n\tkey code %d\nend tell", code)
}
