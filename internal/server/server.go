// Package server provides the HTTP server for the BeMySenses sign language system.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/app"
	"github.com/ayusman/bemysenses/internal/server/api"
	"github.com/ayusman/bemysenses/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	Logger    *zap.Logger
}

// Server represents the HTTP server for the BeMySenses application.
type Server struct {
	config Config
	logger *zap.Logger
	mux    *http.ServeMux
	start  time.Time
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config: config,
		logger: logger,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	a := s.config.App

	// Letter, sample and settings APIs need the store
	if s.config.Store != nil {
		var trainer api.LetterTrainer
		if a != nil {
			trainer = a
		}
		letterHandler := api.NewLetterHandler(s.config.Store, trainer, s.logger)
		samplesHandler := api.NewSamplesHandler(s.config.Store)

		letterRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// /api/letters/{L}/samples
			if strings.HasSuffix(r.URL.Path, "/samples") {
				samplesHandler.ServeHTTP(w, r)
				return
			}
			letterHandler.ServeHTTP(w, r)
		})

		s.mux.Handle("/api/letters", letterRouter)
		s.mux.Handle("/api/letters/", letterRouter)
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store.Settings()))
	}

	if a != nil {
		sessionHandler := api.NewSessionHandler(a, s.config.Store, s.logger)
		s.mux.Handle("/api/session", sessionHandler)
		s.mux.Handle("/api/session/", sessionHandler)
		s.mux.Handle("/api/sessions", sessionHandler)

		translateHandler := api.NewTranslateHandler(a.Translator(), s.logger)
		s.mux.Handle("/api/translate", translateHandler)
		s.mux.Handle("/api/translate/", translateHandler)

		s.mux.Handle("/api/speak", api.NewSpeakHandler(a))
		s.mux.Handle("/api/stream", NewStreamHandler(a))
		s.mux.Handle("/api/events", NewEventsHandler(a, s.logger))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.App != nil {
		response["session_running"] = s.config.App.Running()
		response["narration"] = s.config.App.Narrator().Enabled()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address. It returns
// nil after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("HTTP server listening", zap.String("addr", addr))

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
