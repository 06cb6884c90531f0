package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeFrames struct {
	data []byte
}

func (f *fakeFrames) LatestJPEG() ([]byte, bool) {
	if f.data == nil {
		return nil, false
	}
	return f.data, true
}

func TestStreamHandler(t *testing.T) {
	h := NewStreamHandler(&fakeFrames{data: []byte("jpegdata")})
	h.interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %s", ct)
	}
	body := rec.Body.String()
	if strings.Count(body, "--frame\r\n") < 2 {
		t.Errorf("expected several frames, got %q", body)
	}
	if !strings.Contains(body, "Content-Length: 8\r\n\r\njpegdata\r\n") {
		t.Errorf("frame part malformed: %q", body)
	}
}

func TestStreamHandler_NoFrameYet(t *testing.T) {
	h := NewStreamHandler(&fakeFrames{})
	h.interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx))

	if rec.Body.Len() != 0 {
		t.Errorf("expected no frames, got %q", rec.Body.String())
	}
}

func TestStreamHandler_Method(t *testing.T) {
	rec := httptest.NewRecorder()
	NewStreamHandler(&fakeFrames{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
