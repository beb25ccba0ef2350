package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/tofgesture/internal/app"
	"github.com/ayusman/tofgesture/internal/capture"
)

// StreamInterval is the time between preview images.
const StreamInterval = 66 * time.Millisecond

// StreamHandler serves the latest depth frame as an MJPEG preview.
type StreamHandler struct {
	app      *app.App
	maxRange float64
}

// NewStreamHandler creates a new StreamHandler rendering distances up to
// maxRange.
func NewStreamHandler(a *app.App, maxRange float64) *StreamHandler {
	return &StreamHandler{app: a, maxRange: maxRange}
}

// ServeHTTP streams MJPEG frames to connected clients. A frame is only sent
// when a new one was processed.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(StreamInterval)
	defer ticker.Stop()

	lastSent := int64(-1)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame, ok := h.app.LatestFrame()
		if !ok || frame.TimeMs == lastSent {
			continue
		}
		result := h.app.LatestResult()
		sensor := h.app.Status().Sensor

		img, err := capture.RenderPreview(&frame, result.Hand, sensor, h.maxRange)
		if err != nil {
			log.Printf("preview render error: %v", err)
			continue
		}
		lastSent = frame.TimeMs

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(img))
		w.Write(img)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
