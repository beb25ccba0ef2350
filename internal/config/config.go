// Package config loads the tofgesture configuration file.
//
// The file is JSON. Fields that are absent keep their defaults, so a file
// only needs to name what differs from Default().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ayusman/tofgesture/internal/capture"
	"github.com/ayusman/tofgesture/internal/recognizer"
	"github.com/ayusman/tofgesture/internal/tof"
)

// ErrInvalidConfig is wrapped by every Validate error.
var ErrInvalidConfig = errors.New("invalid config")

// SerialConfig selects and configures the sensor's serial port.
type SerialConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
}

// PortOptions converts c to serial port options.
func (c SerialConfig) PortOptions() capture.PortOptions {
	return capture.PortOptions{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		StopBits: c.StopBits,
		Parity:   c.Parity,
	}
}

// CaptureConfig controls how frames are read and when the sensor runs fast.
type CaptureConfig struct {
	Serial      SerialConfig    `json:"serial"`
	Orientation tof.Orientation `json:"orientation"`

	IdleFPS       int   `json:"idle_fps"`
	ActiveFPS     int   `json:"active_fps"`
	IdleTimeoutMs int64 `json:"idle_timeout_ms"`

	// ActivityThresholdPct is the percentage of zones that must change for
	// the sensor to switch to ActiveFPS.
	ActivityThresholdPct float64 `json:"activity_threshold_pct"`
	ActivityDiffMm       float64 `json:"activity_diff_mm"`
}

// Config aggregates all configuration sections.
type Config struct {
	Addr      string `json:"addr"`
	DBPath    string `json:"db_path"`
	PluginDir string `json:"plugin_dir"`
	StaticDir string `json:"static_dir"`

	PluginTimeoutMs int `json:"plugin_timeout_ms"`
	// EventRetentionDays prunes older gesture events at startup. 0 keeps
	// everything.
	EventRetentionDays int `json:"event_retention_days"`
	// PreviewMaxRangeMm is the distance rendered coldest in the preview.
	PreviewMaxRangeMm float64 `json:"preview_max_range_mm"`

	Sensor     tof.SensorParams  `json:"sensor"`
	Recognizer recognizer.Params `json:"recognizer"`
	Capture    CaptureConfig     `json:"capture"`
}

// Default returns the built-in configuration. DBPath and PluginDir are left
// empty for the command to fill from the user's home directory.
func Default() Config {
	return Config{
		Addr:              "localhost:8080",
		PluginTimeoutMs:   5000,
		PreviewMaxRangeMm: 1000,
		Sensor:            tof.DefaultSensorParams(),
		Recognizer:        recognizer.DefaultParams(),
		Capture: CaptureConfig{
			IdleFPS:              5,
			ActiveFPS:            capture.DefaultFPS,
			IdleTimeoutMs:        2000,
			ActivityThresholdPct: 5,
			ActivityDiffMm:       capture.DefaultDiffThresholdMm,
		},
	}
}

// Load reads the JSON config at path over Default() and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.PluginTimeoutMs <= 0 {
		return fmt.Errorf("%w: plugin_timeout_ms must be positive, got %d", ErrInvalidConfig, c.PluginTimeoutMs)
	}
	if c.EventRetentionDays < 0 {
		return fmt.Errorf("%w: event_retention_days must be non-negative, got %d", ErrInvalidConfig, c.EventRetentionDays)
	}
	if c.PreviewMaxRangeMm <= 0 {
		return fmt.Errorf("%w: preview_max_range_mm must be positive, got %v", ErrInvalidConfig, c.PreviewMaxRangeMm)
	}
	if err := c.Sensor.Validate(); err != nil {
		return fmt.Errorf("%w: sensor: %w", ErrInvalidConfig, err)
	}
	if err := c.Recognizer.Validate(); err != nil {
		return fmt.Errorf("%w: recognizer: %w", ErrInvalidConfig, err)
	}
	return c.Capture.validate()
}

func (c CaptureConfig) validate() error {
	if err := c.Orientation.Validate(); err != nil {
		return fmt.Errorf("%w: capture: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Serial.PortOptions().Normalize(); err != nil {
		return fmt.Errorf("%w: capture.serial: %w", ErrInvalidConfig, err)
	}
	if c.IdleFPS < 1 || c.IdleFPS > capture.MaxFPS {
		return fmt.Errorf("%w: idle_fps must be in [1, %d], got %d", ErrInvalidConfig, capture.MaxFPS, c.IdleFPS)
	}
	if c.ActiveFPS < c.IdleFPS || c.ActiveFPS > capture.MaxFPS {
		return fmt.Errorf("%w: active_fps must be in [idle_fps, %d], got %d", ErrInvalidConfig, capture.MaxFPS, c.ActiveFPS)
	}
	if c.IdleTimeoutMs < 0 {
		return fmt.Errorf("%w: idle_timeout_ms must be non-negative, got %d", ErrInvalidConfig, c.IdleTimeoutMs)
	}
	if c.ActivityThresholdPct <= 0 || c.ActivityThresholdPct > 100 {
		return fmt.Errorf("%w: activity_threshold_pct must be in (0, 100], got %v", ErrInvalidConfig, c.ActivityThresholdPct)
	}
	if c.ActivityDiffMm <= 0 {
		return fmt.Errorf("%w: activity_diff_mm must be positive, got %v", ErrInvalidConfig, c.ActivityDiffMm)
	}
	return nil
}
