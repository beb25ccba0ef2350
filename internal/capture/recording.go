package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/ayusman/tofgesture/internal/tof"
)

// ReadRecording loads a file of frame lines, as captured from the board.
func ReadRecording(path string) ([]tof.DepthFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frames, err := LoadRecording(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frames, nil
}

// LoadRecording reads frame lines from r until EOF.
func LoadRecording(r io.Reader) ([]tof.DepthFrame, error) {
	var frames []tof.DepthFrame

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if isCommentLine(line) {
			continue
		}
		f, err := ParseFrameLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		frames = append(frames, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// WriteRecording writes frames to w, one line each.
func WriteRecording(w io.Writer, frames []tof.DepthFrame) error {
	bw := bufio.NewWriter(w)
	for _, f := range frames {
		if err := AppendFrame(bw, f); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// AppendFrame writes a single frame line to w.
func AppendFrame(w io.Writer, f tof.DepthFrame) error {
	_, err := fmt.Fprintln(w, FormatFrameLine(f))
	return err
}
