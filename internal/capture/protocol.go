package capture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ayusman/tofgesture/internal/tof"
)

// ErrMalformedFrame is returned for a line that is not a valid frame.
var ErrMalformedFrame = errors.New("malformed frame line")

// The sensor board prints one frame per line:
//
//	<time_ms>,<d0>,<d1>,...,<d63>
//
// Distances are millimetres in row-major order, zone 0 top-left. A negative
// distance marks a zone without a valid target.

// ParseFrameLine decodes one frame line.
func ParseFrameLine(line string) (tof.DepthFrame, error) {
	var f tof.DepthFrame

	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != tof.Zones+1 {
		return f, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedFrame, len(fields), tof.Zones+1)
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return f, fmt.Errorf("%w: time: %v", ErrMalformedFrame, err)
	}
	f.TimeMs = ts

	for i, s := range fields[1:] {
		d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return f, fmt.Errorf("%w: zone %d: %v", ErrMalformedFrame, i, err)
		}
		if d < 0 {
			d = tof.InvalidDistance
		}
		f.Zones[i/tof.Cols][i%tof.Cols] = d
	}
	return f, nil
}

// FormatFrameLine encodes f as a frame line without the trailing newline.
func FormatFrameLine(f tof.DepthFrame) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(f.TimeMs, 10))
	for r := range f.Zones {
		for _, d := range f.Zones[r] {
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(d, 'f', -1, 64))
		}
	}
	return b.String()
}

// isCommentLine reports whether line carries no frame: blank lines, "#"
// comments and the board's boot banner lines starting with a letter.
func isCommentLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}
	c := line[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
