// Package api provides HTTP API handlers for the BeMySenses sign language system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/classifier"
	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/store"
)

// LetterTrainer turns stored samples into live letter templates.
type LetterTrainer interface {
	TrainLetter(letter domain.Char) (*classifier.Template, error)
	ForgetLetter(letter domain.Char)
}

// LetterHandler handles HTTP requests for letter resources.
type LetterHandler struct {
	store   *store.Store
	trainer LetterTrainer
	logger  *zap.Logger
}

// NewLetterHandler creates a new LetterHandler. trainer may be nil, in which
// case the train endpoint is unavailable.
func NewLetterHandler(s *store.Store, trainer LetterTrainer, logger *zap.Logger) *LetterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LetterHandler{store: s, trainer: trainer, logger: logger}
}

// ServeHTTP routes /api/letters, /api/letters/{L} and /api/letters/{L}/train.
func (h *LetterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/letters")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(path, "/")
	letter, ok := parseLetter(parts[0])
	if !ok {
		writeError(w, http.StatusBadRequest, "Letter must be a single character A-Z")
		return
	}

	if len(parts) == 2 && parts[1] == "train" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.train(w, r, letter)
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, letter)
	case http.MethodPut:
		h.update(w, r, letter)
	case http.MethodDelete:
		h.delete(w, r, letter)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createLetterRequest struct {
	Letter    string  `json:"letter"`
	Tolerance float64 `json:"tolerance"`
}

type updateLetterRequest struct {
	Tolerance float64 `json:"tolerance"`
}

type letterResponse struct {
	Letter    string  `json:"letter"`
	Tolerance float64 `json:"tolerance"`
	Samples   int     `json:"samples"`
	Trained   bool    `json:"trained"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type listLettersResponse struct {
	Letters []letterResponse `json:"letters"`
}

type trainResponse struct {
	Letter   string `json:"letter"`
	Features int    `json:"features"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func (h *LetterHandler) toResponse(l *store.Letter) letterResponse {
	features, err := h.store.Letters().GetFeatures(l.Letter)
	if err != nil {
		h.logger.Debug("Failed to read features", zap.String("letter", l.Letter), zap.Error(err))
	}
	return letterResponse{
		Letter:    l.Letter,
		Tolerance: l.Tolerance,
		Samples:   l.Samples,
		Trained:   len(features) > 0,
		CreatedAt: l.CreatedAt.Format(timeFormat),
		UpdatedAt: l.UpdatedAt.Format(timeFormat),
	}
}

// parseLetter accepts exactly one letter, in either case.
func parseLetter(s string) (domain.Char, bool) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	c, ok := domain.ParseChar(r)
	if !ok || c == domain.Space {
		return 0, false
	}
	return c, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/letters and returns all letters.
func (h *LetterHandler) list(w http.ResponseWriter, r *http.Request) {
	letters, err := h.store.Letters().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list letters")
		return
	}

	response := listLettersResponse{
		Letters: make([]letterResponse, 0, len(letters)),
	}
	for _, l := range letters {
		response.Letters = append(response.Letters, h.toResponse(l))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/letters/{L}.
func (h *LetterHandler) get(w http.ResponseWriter, r *http.Request, letter domain.Char) {
	l, err := h.store.Letters().Get(letter.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Letter not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get letter")
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(l))
}

// create handles POST /api/letters.
func (h *LetterHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	letter, ok := parseLetter(req.Letter)
	if !ok {
		writeError(w, http.StatusBadRequest, "Letter must be a single character A-Z")
		return
	}

	if _, err := h.store.Letters().Get(letter.String()); err == nil {
		writeError(w, http.StatusConflict, "Letter already exists")
		return
	}

	tolerance := req.Tolerance
	if tolerance == 0 {
		tolerance = classifier.DefaultTolerance
	}
	if tolerance < 0 {
		writeError(w, http.StatusBadRequest, "Tolerance must be positive")
		return
	}

	l := &store.Letter{Letter: letter.String(), Tolerance: tolerance}
	if err := h.store.Letters().Create(l); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create letter")
		return
	}

	writeJSON(w, http.StatusCreated, h.toResponse(l))
}

// update handles PUT /api/letters/{L}.
func (h *LetterHandler) update(w http.ResponseWriter, r *http.Request, letter domain.Char) {
	l, err := h.store.Letters().Get(letter.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Letter not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get letter")
		return
	}

	var req updateLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Tolerance < 0 {
		writeError(w, http.StatusBadRequest, "Tolerance must be positive")
		return
	}
	if req.Tolerance != 0 {
		l.Tolerance = req.Tolerance
	}

	if err := h.store.Letters().Update(l); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update letter")
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(l))
}

// delete handles DELETE /api/letters/{L}.
func (h *LetterHandler) delete(w http.ResponseWriter, r *http.Request, letter domain.Char) {
	if err := h.store.Letters().Delete(letter.String()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Letter not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete letter")
		return
	}

	if h.trainer != nil {
		h.trainer.ForgetLetter(letter)
	}

	w.WriteHeader(http.StatusNoContent)
}

// train handles POST /api/letters/{L}/train.
func (h *LetterHandler) train(w http.ResponseWriter, r *http.Request, letter domain.Char) {
	if h.trainer == nil {
		writeError(w, http.StatusServiceUnavailable, "Training is not available")
		return
	}

	tmpl, err := h.trainer.TrainLetter(letter)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Letter not found")
		case domain.IsKind(err, domain.KindInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Training failed", zap.String("letter", letter.String()), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to train letter")
		}
		return
	}

	writeJSON(w, http.StatusOK, trainResponse{Letter: tmpl.Letter.String(), Features: tmpl.Features.Len()})
}
