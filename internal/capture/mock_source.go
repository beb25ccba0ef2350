package capture

import (
	"sync"

	"github.com/ayusman/tofgesture/internal/tof"
)

// MockSource plays back frames from memory. When looping, timestamps keep
// increasing across passes so the stream stays monotonic.
type MockSource struct {
	frames  []tof.DepthFrame
	index   int
	loop    bool
	offset  int64
	fps     int
	mu      sync.Mutex
	running bool
}

// NewMockSource returns a source that replays frames.
func NewMockSource(frames []tof.DepthFrame, loop bool) *MockSource {
	return &MockSource{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	m.index = 0
	m.offset = 0
	return nil
}

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	return nil
}

func (m *MockSource) ReadFrame() (tof.DepthFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return tof.DepthFrame{}, ErrSourceNotOpen
	}
	if len(m.frames) == 0 {
		return tof.DepthFrame{}, ErrEndOfRecording
	}

	if m.index >= len(m.frames) {
		if !m.loop {
			return tof.DepthFrame{}, ErrEndOfRecording
		}
		first := m.frames[0].TimeMs
		last := m.frames[len(m.frames)-1].TimeMs
		m.offset += last - first + m.interval()
		m.index = 0
	}

	f := m.frames[m.index]
	f.TimeMs += m.offset
	m.index++
	return f, nil
}

// interval is the gap inserted between two passes of a looping recording.
func (m *MockSource) interval() int64 {
	return int64(1000 / m.fps)
}

func (m *MockSource) SetFPS(fps int) error {
	fps = clampFPS(fps)
	if fps == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fps = fps
	return nil
}

func (m *MockSource) FPS() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

func (m *MockSource) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// SetFrames replaces the frame sequence.
func (m *MockSource) SetFrames(frames []tof.DepthFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.index = 0
	m.offset = 0
}

// Remaining returns how many frames are left before the end of the current
// pass.
func (m *MockSource) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames) - m.index
}
