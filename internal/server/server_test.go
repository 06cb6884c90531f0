package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
	"gocv.io/x/gocv"

	"github.com/ayusman/bemysenses/internal/app"
	"github.com/ayusman/bemysenses/internal/capture"
	"github.com/ayusman/bemysenses/internal/detector"
	"github.com/ayusman/bemysenses/internal/narrator"
	"github.com/ayusman/bemysenses/internal/store"
)

// newApp builds an App on a mock camera and detector. withNarration gives
// it a completer so the narrator reports itself enabled.
func newApp(t *testing.T, withNarration bool) *app.App {
	t.Helper()

	frame := capture.BlankFrame(32, 24)
	t.Cleanup(func() { frame.Close() })

	logger := zaptest.NewLogger(t)
	cfg := app.Config{
		Camera:       capture.NewMockCamera([]*gocv.Mat{frame}, true),
		Detector:     detector.NewMockDetector(),
		AlwaysActive: true,
		Pacer:        capture.PacerConfig{IdleFPS: 100, ActiveFPS: 100},
		Logger:       logger,
	}
	if withNarration {
		nar := narrator.New(narrator.Config{}, narrator.CompleterFunc(
			func(ctx context.Context, text string) (string, error) {
				return text, nil
			}), nil, logger)
		nar.Start(context.Background())
		t.Cleanup(nar.Stop)
		cfg.Narrator = nar
	}

	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func getHealth(t *testing.T, s *Server) map[string]interface{} {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestServer_Health(t *testing.T) {
	t.Run("without app reports only status and uptime", func(t *testing.T) {
		response := getHealth(t, New(Config{}))

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
		for _, key := range []string{"session_running", "narration"} {
			if _, exists := response[key]; exists {
				t.Errorf("unexpected %q without an app", key)
			}
		}
	})

	t.Run("reports session and narration state", func(t *testing.T) {
		a := newApp(t, true)
		s := New(Config{App: a})

		response := getHealth(t, s)
		if response["session_running"] != false {
			t.Errorf("session_running = %v, want false", response["session_running"])
		}
		if response["narration"] != true {
			t.Errorf("narration = %v, want true", response["narration"])
		}

		if _, err := a.StartSession(); err != nil {
			t.Fatalf("StartSession() error = %v", err)
		}
		if response := getHealth(t, s); response["session_running"] != true {
			t.Errorf("session_running = %v, want true", response["session_running"])
		}

		if _, err := a.EndSession(context.Background()); err != nil {
			t.Fatalf("EndSession() error = %v", err)
		}
		if response := getHealth(t, s); response["session_running"] != false {
			t.Errorf("session_running after end = %v, want false", response["session_running"])
		}
	})

	t.Run("narration disabled without a completer", func(t *testing.T) {
		response := getHealth(t, New(Config{App: newApp(t, false)}))
		if response["narration"] != false {
			t.Errorf("narration = %v, want false", response["narration"])
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		s := New(Config{})
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_Routes(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	appRoutes := []string{"/api/session", "/api/sessions", "/api/translate?text=hi", "/api/speak"}
	storeRoutes := []string{"/api/letters", "/api/settings"}

	tests := []struct {
		name      string
		config    Config
		mounted   []string
		unmounted []string
	}{
		{
			name:      "bare server",
			config:    Config{},
			unmounted: append(append([]string{}, appRoutes...), storeRoutes...),
		},
		{
			name:      "store only",
			config:    Config{Store: st},
			mounted:   storeRoutes,
			unmounted: appRoutes,
		},
		{
			name:      "app and store",
			config:    Config{Store: st, App: newApp(t, false)},
			mounted:   append(append([]string{}, appRoutes...), storeRoutes...),
			unmounted: []string{"/api/nonexistent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.config)

			for _, path := range tt.unmounted {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				rec := httptest.NewRecorder()
				s.ServeHTTP(rec, req)
				if rec.Code != http.StatusNotFound {
					t.Errorf("GET %s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
				}
			}
			for _, path := range tt.mounted {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				rec := httptest.NewRecorder()
				s.ServeHTTP(rec, req)
				if rec.Code == http.StatusNotFound {
					t.Errorf("GET %s: route should be mounted", path)
				}
			}
		})
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()

	index := "<html><body>BeMySenses</body></html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0644); err != nil {
		t.Fatalf("failed to create index.html: %v", err)
	}
	css := "body { color: red; }"
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte(css), 0644); err != nil {
		t.Fatalf("failed to create style.css: %v", err)
	}

	s := New(Config{StaticDir: dir})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/", http.StatusOK, index},
		{"/style.css", http.StatusOK, css},
		{"/nonexistent.html", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("GET %s: expected status %d, got %d", tt.path, tt.status, rec.Code)
		}
		if tt.body != "" && rec.Body.String() != tt.body {
			t.Errorf("GET %s: expected body %q, got %q", tt.path, tt.body, rec.Body.String())
		}
	}

	// API routes take precedence over the file server
	if response := getHealth(t, s); response["status"] != "ok" {
		t.Errorf("health behind static dir = %v", response)
	}
}

func TestServer_NoStaticDir(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_ShutdownBeforeListen(t *testing.T) {
	s := New(Config{})
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
