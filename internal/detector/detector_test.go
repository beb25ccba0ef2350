package detector

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ayusman/tofgesture/internal/coords"
	"github.com/ayusman/tofgesture/internal/tof"
	"github.com/ayusman/tofgesture/internal/tof/toftest"
)

const epsilon = 1e-9

func defaultLocalizer() Localizer {
	return Localizer{Sensor: tof.DefaultSensorParams(), ThresholdDist: 400}
}

func TestLocate_NoHand(t *testing.T) {
	l := defaultLocalizer()

	t.Run("all zones invalid", func(t *testing.T) {
		f := tof.InvalidFrame()
		if got := l.Locate(&f); got.IsFound() {
			t.Errorf("expected NotFound, got %v", got)
		}
	})

	t.Run("zero readings are invalid", func(t *testing.T) {
		f := toftest.Filled(0, 10)
		if got := l.Locate(&f); got.IsFound() {
			t.Errorf("expected NotFound, got %v", got)
		}
	})

	t.Run("everything beyond threshold", func(t *testing.T) {
		f := toftest.Filled(1200, 10)
		if got := l.Locate(&f); got.IsFound() {
			t.Errorf("expected NotFound, got %v", got)
		}
	})

	t.Run("NaN zone", func(t *testing.T) {
		f := toftest.HandAt(4, 4, math.NaN(), 10)
		if got := l.Locate(&f); got.IsFound() {
			t.Errorf("expected NotFound, got %v", got)
		}
	})
}

func TestLocate_SingleZone(t *testing.T) {
	l := defaultLocalizer()

	for r := 0; r < tof.Rows; r++ {
		for c := 0; c < tof.Cols; c++ {
			f := toftest.HandAt(r, c, 250, 0)

			pos, ok := l.Locate(&f).Position()
			if !ok {
				t.Fatalf("zone (%d, %d): expected Found", r, c)
			}

			theta, phi := tof.ZoneAngles(r, c, l.Sensor)
			if pos.R != 250 || math.Abs(pos.Theta-theta) > epsilon || math.Abs(pos.Phi-phi) > epsilon {
				t.Errorf("zone (%d, %d): got %+v, want r=250 theta=%f phi=%f", r, c, pos, theta, phi)
			}

			gotR, gotC, ok := tof.ZoneFor(pos.Theta, pos.Phi, l.Sensor)
			if !ok || gotR != r || gotC != c {
				t.Errorf("zone (%d, %d): position maps back to (%d, %d)", r, c, gotR, gotC)
			}
		}
	}
}

func TestLocate_Threshold(t *testing.T) {
	l := defaultLocalizer()

	tests := []struct {
		name  string
		dist  float64
		found bool
	}{
		{"well inside", 120, true},
		{"exactly at threshold", 400, true},
		{"just beyond", 400.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := toftest.HandAt(2, 5, tt.dist, 0)
			if got := l.Locate(&f).IsFound(); got != tt.found {
				t.Errorf("Locate() found = %v, want %v", got, tt.found)
			}
		})
	}
}

func TestLocate_PicksNearest(t *testing.T) {
	l := defaultLocalizer()

	f := toftest.HandAt(0, 0, 380, 0)
	f.Zones[6][2] = 150
	f.Zones[3][3] = 220
	f.Zones[7][7] = 90
	f.Zones[1][1] = 900

	pos, ok := l.Locate(&f).Position()
	if !ok {
		t.Fatal("expected Found")
	}
	if pos.R != 90 {
		t.Errorf("R = %f, want 90", pos.R)
	}
	theta, phi := tof.ZoneAngles(7, 7, l.Sensor)
	if pos.Theta != theta || pos.Phi != phi {
		t.Errorf("expected angles of zone (7, 7), got %+v", pos)
	}
}

func TestLocate_TieBreak(t *testing.T) {
	l := defaultLocalizer()

	f := toftest.HandAt(5, 0, 200, 0)
	f.Zones[2][6] = 200
	f.Zones[2][7] = 200

	pos, _ := l.Locate(&f).Position()
	theta, phi := tof.ZoneAngles(2, 6, l.Sensor)
	if pos.Theta != theta || pos.Phi != phi {
		t.Errorf("expected first zone in scan order (2, 6), got %+v", pos)
	}
}

func TestLocate_UpperZonesPointUp(t *testing.T) {
	l := defaultLocalizer()

	top := toftest.HandAt(0, 4, 300, 0)
	bottom := toftest.HandAt(7, 4, 300, 0)
	left := toftest.HandAt(4, 0, 300, 0)
	right := toftest.HandAt(4, 7, 300, 0)

	topC, _ := l.Locate(&top).Cartesian()
	bottomC, _ := l.Locate(&bottom).Cartesian()
	leftC, _ := l.Locate(&left).Cartesian()
	rightC, _ := l.Locate(&right).Cartesian()

	if topC.Z <= 0 || bottomC.Z >= 0 {
		t.Errorf("expected top zone above and bottom zone below the axis, got z=%f and z=%f", topC.Z, bottomC.Z)
	}
	if leftC.Y >= 0 || rightC.Y <= 0 {
		t.Errorf("expected left zone at y<0 and right zone at y>0, got y=%f and y=%f", leftC.Y, rightC.Y)
	}
}

func TestHandState(t *testing.T) {
	t.Run("zero value is NotFound", func(t *testing.T) {
		var h HandState
		if h.IsFound() {
			t.Error("zero HandState should be NotFound")
		}
		if h != NotFound() {
			t.Error("zero HandState should equal NotFound()")
		}
		if _, ok := h.Cartesian(); ok {
			t.Error("Cartesian() should report false for NotFound")
		}
	})

	t.Run("Found carries its position", func(t *testing.T) {
		p := coords.Spherical{R: 100, Theta: 0.1, Phi: 1.4}
		h := Found(p)

		got, ok := h.Position()
		if !ok || got != p {
			t.Errorf("Position() = %+v, %v; want %+v, true", got, ok, p)
		}
	})

	t.Run("found at origin differs from NotFound", func(t *testing.T) {
		if Found(coords.Spherical{}) == NotFound() {
			t.Error("Found at the origin must not equal NotFound")
		}
	})
}

func TestHandState_JSON(t *testing.T) {
	tests := []struct {
		name string
		h    HandState
		want string
	}{
		{"not found", NotFound(), `{"found":false}`},
		{"found", Found(coords.Spherical{R: 200, Theta: 0.5, Phi: 1.5}), `{"found":true,"position":{"r":200,"theta":0.5,"phi":1.5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.h)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var back HandState
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back != tt.h {
				t.Errorf("Unmarshal() = %v, want %v", back, tt.h)
			}
		})
	}

	var h HandState
	if err := json.Unmarshal([]byte(`{"found":true}`), &h); err == nil {
		t.Error("expected error for found state without position")
	}
}
