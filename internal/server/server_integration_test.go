package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/tofgesture/internal/app"
	"github.com/ayusman/tofgesture/internal/gesture"
	"github.com/ayusman/tofgesture/internal/store"
	"github.com/ayusman/tofgesture/internal/tof/toftest"
)

func TestAPI_ActionAndEventWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	a, err := app.New(app.Config{Store: s})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer a.Close()

	srv := New(Config{Store: s, App: a})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	// No plugins are discovered, so bindings are rejected.
	resp, err := client.Post(ts.URL+"/api/actions", "application/json",
		bytes.NewBufferString(`{"gesture":"swipe_right","plugin_name":"light","action_name":"toggle"}`))
	if err != nil {
		t.Fatalf("POST /api/actions error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("POST status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	for _, f := range toftest.SweepColumns(3, 0, 4, 250, 0, 33) {
		a.ProcessFrame(f)
	}

	resp, _ = client.Get(ts.URL + "/api/events")
	var listed struct {
		Events []struct {
			Gesture string `json:"gesture"`
			Hand    *struct {
				R float64 `json:"r"`
			} `json:"hand"`
		} `json:"events"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Events) != 1 || listed.Events[0].Gesture != "swipe_right" {
		t.Fatalf("events = %+v", listed.Events)
	}
	if listed.Events[0].Hand == nil || listed.Events[0].Hand.R != 250 {
		t.Errorf("hand = %+v", listed.Events[0].Hand)
	}

	resp, _ = client.Get(ts.URL + "/api/plugins")
	var plugins struct {
		Plugins []json.RawMessage `json:"plugins"`
	}
	json.NewDecoder(resp.Body).Decode(&plugins)
	resp.Body.Close()
	if len(plugins.Plugins) != 0 {
		t.Errorf("plugins = %d, want 0", len(plugins.Plugins))
	}
}

func TestLive_BroadcastsResults(t *testing.T) {
	a, err := app.New(app.Config{})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer a.Close()

	srv := New(Config{App: a})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// Wait for the handler to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for srv.live.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	frames := toftest.SweepColumns(3, 0, 4, 250, 0, 33)
	for _, f := range frames {
		a.ProcessFrame(f)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got []LiveMessage
	for len(got) < len(frames) {
		var msg LiveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		got = append(got, msg)
	}

	if got[0].TimeMs != 0 || !got[0].Result.Hand.IsFound() || got[0].Nearest != 250 {
		t.Errorf("first message = %+v", got[0])
	}
	last := got[len(got)-1]
	if last.TimeMs != 4*33 || last.Result.Gesture != gesture.SwipeRight {
		t.Errorf("last message = %+v", last)
	}

	srv.Close()
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to close")
	}
}

func TestStream_ServesPreview(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV")
	}

	a, err := app.New(app.Config{})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer a.Close()
	a.ProcessFrame(toftest.HandAt(3, 3, 200, 10))

	ts := httptest.NewServer(New(Config{App: a}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/stream")
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %q", ct)
	}

	want := "--frame\r\nContent-Type: image/jpeg"
	buf := make([]byte, len(want))
	if _, err := io.ReadFull(resp.Body, buf); err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	if string(buf) != want {
		t.Errorf("stream starts with %q", buf)
	}
}
