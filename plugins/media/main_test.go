package main

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    string
		wantErr bool
	}{
		{"auto swipe right", Request{Action: "auto", Gesture: "swipe_right"}, "media-next", false},
		{"auto hold", Request{Action: "auto", Gesture: "static_hold"}, "media-play-pause", false},
		{"explicit", Request{Action: "volume-mute", Gesture: "swipe_up"}, "volume-mute", false},
		{"auto none", Request{Action: "auto", Gesture: "none"}, "", true},
		{"unknown", Request{Action: "eject"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolve(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGestureActionsHaveScripts(t *testing.T) {
	for g, action := range gestureActions {
		if _, ok := actionScripts[action]; !ok {
			t.Errorf("gesture %s maps to %s which has no script", g, action)
		}
	}
}
