package recognizer

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/tofgesture/internal/detector"
	"github.com/ayusman/tofgesture/internal/gesture"
	"github.com/ayusman/tofgesture/internal/tof"
	"github.com/ayusman/tofgesture/internal/tof/toftest"
)

const frameMs = 33

func newDefault(t *testing.T) *Recognizer {
	t.Helper()
	r, err := New(DefaultParams(), DefaultSensorParams())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

// feed runs every frame through r and returns the index and value of each
// gesture reported.
func feed(t *testing.T, r *Recognizer, frames []tof.DepthFrame) (idx []int, got []gesture.Gesture) {
	t.Helper()
	for i, f := range frames {
		res, err := r.Update(f)
		if err != nil {
			t.Fatalf("Update(frame %d, t=%d) error = %v", i, f.TimeMs, err)
		}
		if res.Gesture != gesture.None {
			idx = append(idx, i)
			got = append(got, res.Gesture)
		}
	}
	return idx, got
}

func TestNew(t *testing.T) {
	r := newDefault(t)

	if !r.Configured() {
		t.Error("expected recognizer to be configured")
	}
	if r.Measurements() != 0 || r.HistoryLen() != 0 || r.StartTimeMs() != 0 {
		t.Errorf("fresh recognizer: measurements=%d history=%d start=%d", r.Measurements(), r.HistoryLen(), r.StartTimeMs())
	}
	if r.Params() != DefaultParams() {
		t.Errorf("Params() = %+v", r.Params())
	}
	if r.SensorParams() != DefaultSensorParams() {
		t.Errorf("SensorParams() = %+v", r.SensorParams())
	}
}

func TestNew_InvalidParams(t *testing.T) {
	p := DefaultParams()
	p.GestureThresholdDist = -1

	r, err := New(p, DefaultSensorParams())
	if r != nil {
		t.Error("expected nil recognizer for invalid params")
	}
	if !errors.Is(err, ErrInitFailure) {
		t.Fatalf("New() error = %v, want ErrInitFailure", err)
	}
	if !errors.Is(err, gesture.ErrInvalidParams) {
		t.Errorf("expected the validation error to be wrapped, got %v", err)
	}
	if StatusOf(err) != StatusInitFailure {
		t.Errorf("StatusOf() = %v, want init_failure", StatusOf(err))
	}

	_, err = New(DefaultParams(), tof.SensorParams{FOVHorizontal: 0, FOVVertical: 1})
	if !errors.Is(err, ErrInitFailure) || !errors.Is(err, tof.ErrInvalidSensorParams) {
		t.Errorf("New() with zero FOV error = %v", err)
	}
}

func TestUpdate_Unconfigured(t *testing.T) {
	var r Recognizer

	res, err := r.Update(toftest.HandAt(3, 3, 200, 10))
	if !errors.Is(err, ErrInitFailure) {
		t.Fatalf("Update() error = %v, want ErrInitFailure", err)
	}
	if res != DefaultResult() {
		t.Errorf("Update() result = %+v, want default", res)
	}
	if r.HistoryLen() != 0 || r.Measurements() != 0 {
		t.Error("unconfigured update must not change state")
	}
}

func TestUpdate_ReportsHand(t *testing.T) {
	r := newDefault(t)

	res, err := r.Update(toftest.HandAt(2, 6, 180, 5))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := detector.Locate(ptr(toftest.HandAt(2, 6, 180, 5)), DefaultSensorParams(), 400)
	if res.Hand != want {
		t.Errorf("Hand = %v, want %v", res.Hand, want)
	}
	if res.Gesture != gesture.None {
		t.Errorf("Gesture = %v, want none", res.Gesture)
	}

	res, _ = r.Update(toftest.Empty(40))
	if res.Hand.IsFound() {
		t.Error("expected NotFound for an empty frame")
	}
	if r.Measurements() != 2 || r.HistoryLen() != 2 {
		t.Errorf("measurements=%d history=%d, want 2/2", r.Measurements(), r.HistoryLen())
	}
}

func ptr(f tof.DepthFrame) *tof.DepthFrame { return &f }

func TestUpdate_Monotonic(t *testing.T) {
	r := newDefault(t)
	feed(t, r, toftest.Hold(3, 3, 250, 100, frameMs, 5))

	before := r.History()
	last := r.LastTimeMs()

	res, err := r.Update(toftest.HandAt(3, 3, 250, last-1))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Update() error = %v, want ErrInvalidInput", err)
	}
	if StatusOf(err) != StatusInvalidInput {
		t.Errorf("StatusOf() = %v, want invalid_input", StatusOf(err))
	}
	if res != DefaultResult() {
		t.Errorf("result = %+v, want default", res)
	}
	if r.Measurements() != 5 || r.LastTimeMs() != last {
		t.Errorf("measurements=%d last=%d, want 5/%d", r.Measurements(), r.LastTimeMs(), last)
	}
	if diff := cmp.Diff(before, r.History(), cmp.AllowUnexported(detector.HandState{})); diff != "" {
		t.Errorf("history changed after rejected update (-before +after):\n%s", diff)
	}

	// An equal timestamp is accepted.
	if _, err := r.Update(toftest.HandAt(3, 3, 250, last)); err != nil {
		t.Errorf("Update() with equal timestamp error = %v", err)
	}
}

func TestUpdate_BeforeStartTime(t *testing.T) {
	r := newDefault(t)
	if err := r.Reset(DefaultParams(), DefaultSensorParams(), 1000); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if _, err := r.Update(toftest.Empty(999)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Update() before start time error = %v, want ErrInvalidInput", err)
	}
	if _, err := r.Update(toftest.Empty(1000)); err != nil {
		t.Errorf("Update() at start time error = %v", err)
	}
}

func TestUpdate_StaticHold(t *testing.T) {
	t.Run("held for the hold time", func(t *testing.T) {
		r := newDefault(t)
		// 46 intervals of 33 ms = 1518 ms >= 1500 ms
		idx, got := feed(t, r, toftest.Hold(3, 4, 250, 0, frameMs, 47))

		if diff := cmp.Diff([]gesture.Gesture{gesture.StaticHold}, got); diff != "" {
			t.Fatalf("gestures mismatch (-want +got):\n%s", diff)
		}
		if idx[0] != 46 {
			t.Errorf("hold reported at frame %d, want 46", idx[0])
		}
		if r.HistoryLen() != 0 {
			t.Errorf("HistoryLen() = %d after gesture, want 0", r.HistoryLen())
		}
		if r.Measurements() != 47 {
			t.Errorf("Measurements() = %d, want 47", r.Measurements())
		}
	})

	t.Run("held too briefly", func(t *testing.T) {
		r := newDefault(t)
		_, got := feed(t, r, toftest.Hold(3, 4, 250, 0, frameMs, 46))
		if len(got) != 0 {
			t.Errorf("expected no gesture, got %v", got)
		}
	})

	t.Run("sustained hold fires once per window", func(t *testing.T) {
		r := newDefault(t)
		idx, got := feed(t, r, toftest.Hold(3, 4, 250, 0, frameMs, 94))

		want := []gesture.Gesture{gesture.StaticHold, gesture.StaticHold}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("gestures mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int{46, 93}, idx); diff != "" {
			t.Errorf("gesture frames mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("hand beyond threshold", func(t *testing.T) {
		r := newDefault(t)
		_, got := feed(t, r, toftest.Hold(3, 4, 650, 0, frameMs, 60))
		if len(got) != 0 {
			t.Errorf("expected no gesture for a far target, got %v", got)
		}
	})
}

func TestUpdate_Swipes(t *testing.T) {
	// Once a swipe is reported the history starts over, so the rest of a
	// long sweep can be reported again.
	tests := []struct {
		name    string
		frames  []tof.DepthFrame
		want    []gesture.Gesture
		wantIdx []int
	}{
		{"right", toftest.SweepColumns(3, 0, 7, 250, 0, frameMs),
			[]gesture.Gesture{gesture.SwipeRight}, []int{4}},
		{"left", toftest.SweepColumns(4, 7, 0, 250, 0, frameMs),
			[]gesture.Gesture{gesture.SwipeLeft}, []int{4}},
		{"up", toftest.SweepRows(4, 7, 0, 250, 0, frameMs),
			[]gesture.Gesture{gesture.SwipeUp, gesture.SwipeUp}, []int{3, 7}},
		{"down", toftest.SweepRows(3, 0, 7, 250, 0, frameMs),
			[]gesture.Gesture{gesture.SwipeDown, gesture.SwipeDown}, []int{3, 7}},
		{"right at 400 mm", toftest.SweepColumns(3, 0, 7, 400, 0, frameMs),
			[]gesture.Gesture{gesture.SwipeRight, gesture.SwipeRight}, []int{3, 7}},
		{"up from row 6", toftest.SweepRows(4, 6, 0, 250, 0, frameMs),
			[]gesture.Gesture{gesture.SwipeUp}, []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newDefault(t)
			idx, got := feed(t, r, tt.frames)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("gestures mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantIdx, idx); diff != "" {
				t.Errorf("frames mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdate_SwipeReportedOnce(t *testing.T) {
	r := newDefault(t)

	// Column 0 to 4 at 250 mm travels about 96 mm along Y.
	frames := toftest.SweepColumns(3, 0, 4, 250, 0, frameMs)
	idx, got := feed(t, r, frames)

	if diff := cmp.Diff([]gesture.Gesture{gesture.SwipeRight}, got); diff != "" {
		t.Fatalf("gestures mismatch (-want +got):\n%s", diff)
	}
	if idx[0] != 4 {
		t.Errorf("swipe reported at frame %d, want 4", idx[0])
	}

	// The hand stays at the end position: the history was cleared, so the
	// same travel is not reported again.
	_, got = feed(t, r, toftest.Hold(3, 4, 250, 5*frameMs, frameMs, 10))
	if len(got) != 0 {
		t.Errorf("expected no further gesture, got %v", got)
	}
}

func TestUpdate_SwipeInterruptedByGap(t *testing.T) {
	r := newDefault(t)

	frames := toftest.SweepColumns(3, 0, 2, 250, 0, frameMs)
	frames = append(frames, toftest.Gap(3*frameMs, frameMs, 2)...)
	frames = append(frames, toftest.SweepColumns(3, 5, 7, 250, 5*frameMs, frameMs)...)

	if _, got := feed(t, r, frames); len(got) != 0 {
		t.Errorf("expected no gesture across a gap, got %v", got)
	}
}

func TestReset_EquivalentToNew(t *testing.T) {
	used := newDefault(t)
	feed(t, used, toftest.SweepColumns(2, 0, 3, 300, 0, frameMs))
	feed(t, used, toftest.Hold(5, 5, 150, 200, frameMs, 12))

	if err := used.Reset(DefaultParams(), DefaultSensorParams(), 0); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	fresh := newDefault(t)

	first := toftest.HandAt(1, 6, 220, 15)
	got, errUsed := used.Update(first)
	want, errFresh := fresh.Update(first)

	if errUsed != nil || errFresh != nil {
		t.Fatalf("Update() errors: used=%v fresh=%v", errUsed, errFresh)
	}
	if got != want {
		t.Errorf("result after Reset = %+v, fresh = %+v", got, want)
	}
	if used.Measurements() != fresh.Measurements() || used.LastTimeMs() != fresh.LastTimeMs() {
		t.Errorf("counters differ: used %d/%d fresh %d/%d",
			used.Measurements(), used.LastTimeMs(), fresh.Measurements(), fresh.LastTimeMs())
	}
	if diff := cmp.Diff(fresh.History(), used.History(), cmp.AllowUnexported(detector.HandState{})); diff != "" {
		t.Errorf("history differs (-fresh +used):\n%s", diff)
	}
}

func TestReset_InvalidKeepsState(t *testing.T) {
	r := newDefault(t)
	feed(t, r, toftest.Hold(3, 3, 250, 0, frameMs, 5))

	bad := DefaultParams()
	bad.SwipeHorizontalTravelDist = 0

	err := r.Reset(bad, DefaultSensorParams(), 5000)
	if !errors.Is(err, ErrInitFailure) {
		t.Fatalf("Reset() error = %v, want ErrInitFailure", err)
	}
	if r.Params() != DefaultParams() {
		t.Error("params changed after failed Reset")
	}
	if r.HistoryLen() != 5 || r.Measurements() != 5 || r.StartTimeMs() != 0 {
		t.Errorf("state changed after failed Reset: history=%d measurements=%d start=%d",
			r.HistoryLen(), r.Measurements(), r.StartTimeMs())
	}

	// The recognizer keeps working with the previous configuration.
	if _, err := r.Update(toftest.HandAt(3, 3, 250, 5*frameMs)); err != nil {
		t.Errorf("Update() after failed Reset error = %v", err)
	}
}

func TestReset_InvalidOnEmpty(t *testing.T) {
	var r Recognizer

	err := r.Reset(DefaultParams(), tof.SensorParams{FOVHorizontal: math.Pi, FOVVertical: 1}, 0)
	if !errors.Is(err, ErrInitFailure) {
		t.Fatalf("Reset() error = %v, want ErrInitFailure", err)
	}
	if r.Configured() {
		t.Error("recognizer should stay unconfigured")
	}
	if _, err := r.Update(toftest.Empty(1)); !errors.Is(err, ErrInitFailure) {
		t.Errorf("Update() error = %v, want ErrInitFailure", err)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Params)
		wantErr bool
	}{
		{"defaults", func(p *Params) {}, false},
		{"zero threshold", func(p *Params) { p.GestureThresholdDist = 0 }, true},
		{"NaN threshold", func(p *Params) { p.GestureThresholdDist = math.NaN() }, true},
		{"infinite threshold", func(p *Params) { p.GestureThresholdDist = math.Inf(1) }, true},
		{"negative hold time", func(p *Params) { p.StaticHoldTimeMs = -10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParams_JSON(t *testing.T) {
	data, err := json.Marshal(DefaultParams())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var flat map[string]float64
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := map[string]float64{
		"gesture_threshold_dist":       400,
		"static_hold_time_ms":          1500,
		"static_hold_tolerance_dist":   100,
		"swipe_tolerance_dist":         120,
		"swipe_horizontal_travel_dist": 80,
		"swipe_vertical_travel_dist":   70,
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("JSON fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultResult(t *testing.T) {
	res := DefaultResult()
	if res.Hand.IsFound() || res.Gesture != gesture.None {
		t.Errorf("DefaultResult() = %+v", res)
	}
	if res != (Result{}) {
		t.Error("DefaultResult() should equal the zero Result")
	}
}

func TestInvalidMeasurement(t *testing.T) {
	f := InvalidMeasurement()
	if f.ValidCount() != 0 {
		t.Errorf("ValidCount() = %d, want 0", f.ValidCount())
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusOk},
		{ErrInitFailure, StatusInitFailure},
		{ErrInvalidInput, StatusInvalidInput},
		{errors.New("other"), StatusInitFailure},
	}

	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Errorf("StatusOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}

	if StatusInvalidInput.String() != "invalid_input" {
		t.Errorf("String() = %q", StatusInvalidInput.String())
	}
}
