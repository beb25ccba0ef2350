package app

import (
	"errors"
	"io"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/tofgesture/internal/capture"
	"github.com/ayusman/tofgesture/internal/gesture"
	"github.com/ayusman/tofgesture/internal/plugin"
	"github.com/ayusman/tofgesture/internal/recognizer"
	"github.com/ayusman/tofgesture/internal/store"
	"github.com/ayusman/tofgesture/internal/tof"
)

// modeSwitch tracks idle/active mode in sensor time.
type modeSwitch struct {
	idleFPS        int
	activeFPS      int
	timeoutMs      int64
	active         bool
	lastActivityMs int64
}

func (m *modeSwitch) fps() int {
	if m.active {
		return m.activeFPS
	}
	return m.idleFPS
}

// observe records whether the frame at nowMs showed activity and returns the
// frame rate to use and whether it changed.
func (m *modeSwitch) observe(moved bool, nowMs int64) (int, bool) {
	if moved {
		m.lastActivityMs = nowMs
		if !m.active {
			m.active = true
			return m.activeFPS, true
		}
		return m.activeFPS, false
	}
	if m.active && nowMs-m.lastActivityMs > m.timeoutMs {
		m.active = false
		return m.idleFPS, true
	}
	return m.fps(), false
}

// edgeTrigger reports a gesture once per presence of the hand. The
// recognizer clears its history after a gesture, so a long sweep or a long
// hold can be classified again while the same hand is still in view.
type edgeTrigger struct {
	held gesture.Gesture
}

// filter returns res with a repeated gesture replaced by None, and the
// gesture it suppressed. The trigger re-arms on the first frame without a
// hand.
func (e *edgeTrigger) filter(res recognizer.Result) (recognizer.Result, gesture.Gesture) {
	if !res.Hand.IsFound() {
		e.held = gesture.None
		return res, gesture.None
	}
	if res.Gesture == gesture.None {
		return res, gesture.None
	}
	if res.Gesture == e.held {
		repeated := res.Gesture
		res.Gesture = gesture.None
		return res, repeated
	}
	e.held = res.Gesture
	return res, gesture.None
}

// runPipeline is the main loop reading frames from the source.
//
// Pipeline logic:
//  1. Start in idle mode at IdleFPS.
//  2. When enough zones change between frames, switch to ActiveFPS.
//  3. Every frame goes through the recognizer.
//  4. After IdleTimeoutMs of sensor time without activity, go back to idle.
//
// The loop ends on Stop or when the source has no more frames.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(frameInterval(a.config.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		raw, err := a.source.ReadFrame()
		if err != nil {
			select {
			case <-stopCh:
				return
			default:
			}
			if errors.Is(err, capture.ErrEndOfRecording) || errors.Is(err, io.EOF) {
				log.Printf("Source ended: %v", err)
				return
			}
			log.Printf("Error reading frame: %v", err)
			continue
		}

		a.notifyFrame(raw)

		if !a.IsEnabled() {
			continue
		}

		moved, _ := a.activity.Detect(&raw)

		if fps, changed := a.syncFPS(moved, raw.TimeMs); changed {
			ticker.Reset(frameInterval(fps))
			if fps == a.config.ActiveFPS {
				log.Printf("Switched to active mode (%d Hz)", fps)
			} else {
				log.Printf("Switched to idle mode (%d Hz)", fps)
			}
		}

		a.ProcessFrame(raw)
	}
}

// syncFPS records activity for the frame at nowMs and makes the source range
// at the rate of the current mode. A rate the source failed to take is sent
// again with the next frame.
func (a *App) syncFPS(moved bool, nowMs int64) (fps int, changed bool) {
	a.procMu.Lock()
	fps, changed = a.mode.observe(moved, nowMs)
	a.procMu.Unlock()

	if changed || a.source.FPS() != fps {
		if err := a.source.SetFPS(fps); err != nil {
			log.Printf("Failed to set ranging frequency to %d Hz: %v", fps, err)
		}
	}
	return fps, changed
}

func frameInterval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}

func (a *App) notifyFrame(f tof.DepthFrame) {
	a.mu.RLock()
	hooks := slices.Clone(a.onFrame)
	a.mu.RUnlock()

	for _, fn := range hooks {
		fn(f)
	}
}

// ProcessFrame orients raw, runs it through the recognizer and handles the
// result. Frames the recognizer rejects are logged and dropped.
//
// A gesture is reported once until the hand leaves the field of view; repeats
// of it come back as None.
func (a *App) ProcessFrame(raw tof.DepthFrame) (recognizer.Result, error) {
	frame := tof.NewFrame(a.config.Orientation.Apply(raw.Zones), raw.TimeMs)

	a.procMu.Lock()
	res, err := a.recognizer.Update(frame)
	var repeated gesture.Gesture
	if err == nil {
		res, repeated = a.edge.filter(res)
	}
	a.procMu.Unlock()
	if err != nil {
		log.Printf("Dropping frame at %d ms: %v", frame.TimeMs, err)
		return res, err
	}
	if repeated != gesture.None {
		log.Printf("Ignoring repeated %s at %d ms", repeated, frame.TimeMs)
	}

	a.mu.Lock()
	a.latest = res
	a.latestFrame = frame
	a.hasFrame = true
	if res.Gesture != gesture.None {
		a.lastGesture = res.Gesture
	}
	listeners := slices.Clone(a.onResult)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(res, frame)
	}

	if res.Gesture != gesture.None {
		a.handleGesture(res, frame.TimeMs)
	}
	return res, nil
}

// handleGesture logs and stores a recognized gesture and dispatches the
// action bound to it.
func (a *App) handleGesture(res recognizer.Result, timeMs int64) {
	name := res.Gesture.String()
	log.Printf("Gesture recognized: %s (hand %s, %d ms)", name, res.Hand, timeMs)

	if a.config.Store == nil {
		return
	}

	action, err := a.config.Store.Actions().GetByGesture(res.Gesture)
	if err != nil {
		log.Printf("Failed to look up action for %s: %v", name, err)
	}

	event := &store.Event{
		ID:          uuid.NewString(),
		Gesture:     name,
		FrameTimeMs: timeMs,
	}
	if pos, ok := res.Hand.Position(); ok {
		event.HandFound = true
		event.R, event.Theta, event.Phi = pos.R, pos.Theta, pos.Phi
	}
	if action != nil {
		event.ActionID = action.ID
	}
	if err := a.config.Store.Events().Create(event); err != nil {
		log.Printf("Failed to store event for %s: %v", name, err)
	}

	if action != nil {
		a.dispatch(action, res, timeMs)
	}
}

// dispatch runs the plugin for action in the background.
func (a *App) dispatch(action *store.Action, res recognizer.Result, timeMs int64) {
	name := res.Gesture.String()
	p, err := a.pluginMgr.Resolve(action.PluginName, action.ActionName, name)
	if err != nil {
		log.Printf("Cannot run %s/%s for %s: %v", action.PluginName, action.ActionName, name, err)
		return
	}

	req := plugin.NewRequest(action.ActionName, res.Gesture, res.Hand, timeMs, action.Config)
	a.actions.Go(func() {
		resp, err := a.pluginExec.Execute(a.ctx, p, req)
		switch {
		case err != nil:
			log.Printf("Action %s/%s failed: %v", action.PluginName, action.ActionName, err)
		case !resp.Success:
			log.Printf("Action %s/%s returned error: %s", action.PluginName, action.ActionName, resp.Error)
		default:
			log.Printf("Action %s/%s done for %s", action.PluginName, action.ActionName, name)
		}
	})
}
