package server

import (
	"fmt"
	"net/http"
	"time"
)

// FrameSource provides the latest camera frame as JPEG.
type FrameSource interface {
	LatestJPEG() ([]byte, bool)
}

// StreamInterval is the delay between MJPEG frames (~15 FPS).
const StreamInterval = 66 * time.Millisecond

// StreamHandler serves MJPEG frames of the session's camera preview.
// It never reads the camera itself; the session loop owns the device.
type StreamHandler struct {
	source   FrameSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler over the given frame source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source, interval: StreamInterval}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		data, ok := h.source.LatestJPEG()
		if !ok {
			continue
		}

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		if _, err := w.Write(data); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
