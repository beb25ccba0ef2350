// Package main provides a light plugin. It switches a smart light by posting
// to an HTTP webhook given in the action config.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	TimeMs  int64           `json:"time_ms"`
	Config  json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is the per-action configuration.
type Config struct {
	URL string `json:"url"`
	// Token is sent as a bearer token when set.
	Token string `json:"token,omitempty"`
	// TimeoutMs bounds the webhook call. Defaults to 2000.
	TimeoutMs int `json:"timeout_ms,omitempty"`
}

// webhookBody is what the webhook receives.
type webhookBody struct {
	State   string `json:"state"`
	Gesture string `json:"gesture,omitempty"`
	TimeMs  int64  `json:"time_ms"`
}

var states = map[string]bool{"on": true, "off": true, "toggle": true}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	status, err := run(req)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	data, _ := json.Marshal(map[string]int{"status": status})
	writeResponse(Response{Success: true, Data: data})
}

func run(req Request) (int, error) {
	if !states[req.Action] {
		return 0, fmt.Errorf("unknown action: %s", req.Action)
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return 0, fmt.Errorf("invalid config: %w", err)
		}
	}
	if cfg.URL == "" {
		return 0, fmt.Errorf("config.url is required")
	}
	if cfg.TimeoutMs <= 0 {
		cfg.TimeoutMs = 2000
	}

	body, err := json.Marshal(webhookBody{State: req.Action, Gesture: req.Gesture, TimeMs: req.TimeMs})
	if err != nil {
		return 0, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("invalid url: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	client := &http.Client{Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond}
	resp, err := client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("webhook failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("webhook returned %s", resp.Status)
	}
	return resp.StatusCode, nil
}

// writeResponse writes a response to stdout.
func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
