package plugin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/tofgesture/internal/detector"
	"github.com/ayusman/tofgesture/internal/gesture"
)

func TestPlugin_Light_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pluginDir := findPluginDir("light")
	if pluginDir == "" {
		t.Skip("light plugin not built")
	}

	var got map[string]any
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Resolve("light", "toggle", "static_hold")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	config, _ := json.Marshal(map[string]string{"url": hook.URL})
	req := NewRequest("toggle", gesture.StaticHold, detector.NotFound(), 42, config)

	resp, err := NewExecutor(5000).Execute(context.Background(), plug, req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success {
		t.Fatalf("plugin failed: %s", resp.Error)
	}
	if got["state"] != "toggle" || got["gesture"] != "static_hold" {
		t.Errorf("webhook body = %v", got)
	}
}

func TestPlugin_Light_MissingURL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pluginDir := findPluginDir("light")
	if pluginDir == "" {
		t.Skip("light plugin not built")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	mgr.Discover()
	plug, err := mgr.Get("light")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	resp, err := NewExecutor(5000).Execute(context.Background(), plug, &Request{Action: "on", Config: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure without a webhook url")
	}
}

// findPluginDir returns the plugin's directory when its manifest and a built
// executable are present.
func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, "plugin.json")); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return dir
		}
	}
	return ""
}
