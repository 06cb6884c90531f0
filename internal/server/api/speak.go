package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Speaker queues text for speech.
type Speaker interface {
	Speak(text string)
}

// SpeakHandler handles POST /api/speak. Speech runs in the background;
// the request returns as soon as the text is queued.
type SpeakHandler struct {
	speaker Speaker
}

// NewSpeakHandler creates a SpeakHandler.
func NewSpeakHandler(s Speaker) *SpeakHandler {
	return &SpeakHandler{speaker: s}
}

type speakRequest struct {
	Text string `json:"text"`
}

func (h *SpeakHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	h.speaker.Speak(req.Text)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
