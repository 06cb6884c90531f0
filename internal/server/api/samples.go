package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ayusman/bemysenses/internal/classifier"
	"github.com/ayusman/bemysenses/internal/store"
)

// SamplesHandler handles HTTP requests for letter sample resources.
type SamplesHandler struct {
	store *store.Store
}

// NewSamplesHandler creates a new SamplesHandler with the given store.
func NewSamplesHandler(s *store.Store) *SamplesHandler {
	return &SamplesHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/letters/{L}/samples
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/letters/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "samples" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	letter, ok := parseLetter(parts[0])
	if !ok {
		writeError(w, http.StatusBadRequest, "Letter must be a single character A-Z")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, letter.String())
	case http.MethodPost:
		h.create(w, r, letter.String())
	case http.MethodDelete:
		h.clear(w, r, letter.String())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request types

type createSamplesRequest struct {
	Samples []json.RawMessage `json:"samples"`
}

// Response types

type sampleResponse struct {
	ID          int64           `json:"id"`
	Letter      string          `json:"letter"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   string          `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

// list handles GET /api/letters/{L}/samples
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, letter string) {
	samples, err := h.store.Samples().GetByLetter(letter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{
		Samples: make([]sampleResponse, 0, len(samples)),
	}

	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			ID:          s.ID,
			Letter:      s.Letter,
			SampleIndex: s.SampleIndex,
			Data:        s.Data,
			CreatedAt:   s.CreatedAt.Format(timeFormat),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/letters/{L}/samples
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, letter string) {
	if _, err := h.store.Letters().Get(letter); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Letter not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify letter")
		return
	}

	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}
	if err := validateSamples(req.Samples); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Samples().Create(letter, req.Samples); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save samples")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// clear handles DELETE /api/letters/{L}/samples
func (h *SamplesHandler) clear(w http.ResponseWriter, r *http.Request, letter string) {
	if err := h.store.Samples().DeleteByLetter(letter); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateSamples rejects samples the trainer could not use.
func validateSamples(samples []json.RawMessage) error {
	for i, raw := range samples {
		var s classifier.Sample
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("sample %d is not a landmark sample", i)
		}
		if len(s.Landmarks) == 0 {
			return fmt.Errorf("sample %d has no landmarks", i)
		}
	}
	return nil
}
