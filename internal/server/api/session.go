package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/app"
	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/store"
)

// SessionController starts and ends prediction sessions.
type SessionController interface {
	StartSession() (app.SessionInfo, error)
	EndSession(ctx context.Context) (app.FinalResult, error)
	Snapshot() app.SessionInfo
}

// SessionHandler serves the session lifecycle and the transcript history.
type SessionHandler struct {
	sessions SessionController
	store    *store.Store
	logger   *zap.Logger
}

// NewSessionHandler creates a SessionHandler. s may be nil, which disables
// the history endpoint.
func NewSessionHandler(sessions SessionController, s *store.Store, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{sessions: sessions, store: s, logger: logger}
}

// DefaultHistoryLimit is how many sessions GET /api/sessions returns by default.
const DefaultHistoryLimit = 20

// ServeHTTP routes:
//
//	GET  /api/session         current or last session
//	POST /api/session/start   start a session
//	POST /api/session/end     end the session and return the final result
//	GET  /api/sessions        recent transcripts
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/sessions") {
		h.history(w, r)
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/api/session")
	action = strings.Trim(action, "/")

	switch action {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.sessions.Snapshot())
	case "start":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.start(w, r)
	case "end":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.end(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	info, err := h.sessions.StartSession()
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionRunning):
			writeError(w, http.StatusConflict, "Session already running")
		case domain.IsKind(err, domain.KindCaptureUnavailable):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			h.logger.Error("Failed to start session", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to start session")
		}
		return
	}

	writeJSON(w, http.StatusCreated, info)
}

func (h *SessionHandler) end(w http.ResponseWriter, r *http.Request) {
	final, err := h.sessions.EndSession(r.Context())
	if err != nil {
		if errors.Is(err, app.ErrNoSession) {
			writeError(w, http.StatusConflict, "No session to end")
			return
		}
		h.logger.Error("Failed to end session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to end session")
		return
	}

	writeJSON(w, http.StatusOK, final)
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

func (h *SessionHandler) history(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "History is not available")
		return
	}

	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}
