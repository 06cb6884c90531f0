package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordingSpeaker struct {
	texts []string
}

func (r *recordingSpeaker) Speak(text string) {
	r.texts = append(r.texts, text)
}

func TestSpeakHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantSpoken bool
	}{
		{name: "queues text", method: http.MethodPost, body: `{"text":"hello there"}`, wantStatus: http.StatusAccepted, wantSpoken: true},
		{name: "blank text", method: http.MethodPost, body: `{"text":"  "}`, wantStatus: http.StatusBadRequest},
		{name: "invalid json", method: http.MethodPost, body: `{`, wantStatus: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			speaker := &recordingSpeaker{}
			handler := NewSpeakHandler(speaker)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/speak", bytes.NewBufferString(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if spoken := len(speaker.texts) == 1; spoken != tt.wantSpoken {
				t.Errorf("spoken = %v, want %v", speaker.texts, tt.wantSpoken)
			}
		})
	}
}
