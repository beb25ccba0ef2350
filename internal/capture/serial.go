package capture

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"

	"github.com/ayusman/tofgesture/internal/tof"
)

// SerialPorter is the part of a serial port the source needs. It lets tests
// run without hardware.
type SerialPorter interface {
	io.ReadWriter
	io.Closer
}

// PortOpener opens the port at path.
type PortOpener func(path string, mode *serial.Mode) (SerialPorter, error)

func openSerialPort(path string, mode *serial.Mode) (SerialPorter, error) {
	return serial.Open(path, mode)
}

// PortOptions describes the serial link to the sensor board.
type PortOptions struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
}

// Normalize validates the options and fills in defaults for unset values.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o

	if opts.BaudRate <= 0 {
		opts.BaudRate = 115200
	}

	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	switch strings.TrimSpace(strings.ToUpper(opts.Parity)) {
	case "", "N", "NONE":
		opts.Parity = "N"
	case "E", "EVEN":
		opts.Parity = "E"
	case "O", "ODD":
		opts.Parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}

	return opts, nil
}

// SerialMode converts the options into the mode used to open the port.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}

	return mode, nil
}

// SerialSource reads frame lines from a sensor board on a serial port.
// The board accepts "F=<hz>\n" to change its ranging frequency.
type SerialSource struct {
	path   string
	opts   PortOptions
	opener PortOpener

	mu      sync.Mutex
	port    SerialPorter
	scanner *bufio.Scanner
	fps     int
}

// NewSerialSource returns a source for the board at path. It is opened by Open.
func NewSerialSource(path string, opts PortOptions) *SerialSource {
	return &SerialSource{
		path:   path,
		opts:   opts,
		opener: openSerialPort,
		fps:    DefaultFPS,
	}
}

// SetOpener replaces the function used to open the port.
func (s *SerialSource) SetOpener(fn PortOpener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opener = fn
}

// Open opens the port and sends the current ranging frequency.
func (s *SerialSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		return nil
	}

	mode, err := s.opts.SerialMode()
	if err != nil {
		return fmt.Errorf("serial options: %w", err)
	}

	port, err := s.opener(s.path, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}

	s.port = port
	s.scanner = bufio.NewScanner(port)

	if err := s.sendFPS(s.fps); err != nil {
		port.Close()
		s.port = nil
		s.scanner = nil
		return err
	}
	return nil
}

// Close closes the port.
func (s *SerialSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.scanner = nil
	return err
}

// ReadFrame returns the next frame line from the board. Blank lines,
// comments and boot messages are skipped.
func (s *SerialSource) ReadFrame() (tof.DepthFrame, error) {
	s.mu.Lock()
	scanner := s.scanner
	s.mu.Unlock()

	if scanner == nil {
		return tof.DepthFrame{}, ErrSourceNotOpen
	}

	for scanner.Scan() {
		line := scanner.Text()
		if isCommentLine(line) {
			continue
		}
		return ParseFrameLine(line)
	}
	if err := scanner.Err(); err != nil {
		return tof.DepthFrame{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return tof.DepthFrame{}, fmt.Errorf("read %s: %w", s.path, io.EOF)
}

// SetFPS changes the ranging frequency. Values <= 0 are ignored; values above
// MaxFPS are clamped. While the port is open the new rate is sent to the
// board, and FPS only changes if the write succeeded.
func (s *SerialSource) SetFPS(fps int) error {
	fps = clampFPS(fps)
	if fps == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		if err := s.sendFPS(fps); err != nil {
			return err
		}
	}
	s.fps = fps
	return nil
}

func (s *SerialSource) sendFPS(fps int) error {
	if _, err := fmt.Fprintf(s.port, "F=%d\n", fps); err != nil {
		return fmt.Errorf("set ranging frequency: %w", err)
	}
	return nil
}

// FPS returns the current ranging frequency.
func (s *SerialSource) FPS() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fps
}

// IsOpen reports whether the port is open.
func (s *SerialSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}
