package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"
	"gocv.io/x/gocv"

	"github.com/ayusman/bemysenses/internal/app"
	"github.com/ayusman/bemysenses/internal/capture"
	"github.com/ayusman/bemysenses/internal/detector"
	"github.com/ayusman/bemysenses/internal/narrator"
	"github.com/ayusman/bemysenses/internal/store"
)

type testServer struct {
	ts       *httptest.Server
	store    *store.Store
	app      *app.App
	detector *detector.MockDetector
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	frame := capture.BlankFrame(32, 24)
	t.Cleanup(func() { frame.Close() })

	logger := zaptest.NewLogger(t)
	nar := narrator.New(narrator.Config{Timeout: time.Second}, narrator.CompleterFunc(
		func(ctx context.Context, text string) (string, error) {
			return strings.ToLower(text) + "!", nil
		}), nil, logger)
	nar.Start(context.Background())
	t.Cleanup(nar.Stop)

	det := detector.NewMockDetector()
	a, err := app.New(app.Config{
		Store:        s,
		Camera:       capture.NewMockCamera([]*gocv.Mat{frame}, true),
		Detector:     det,
		Narrator:     nar,
		AlwaysActive: true,
		Pacer:        capture.PacerConfig{IdleFPS: 200, ActiveFPS: 200},
		Logger:       logger,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })

	ts := httptest.NewServer(New(Config{Store: s, App: a, Logger: logger}))
	t.Cleanup(ts.Close)

	return &testServer{ts: ts, store: s, app: a, detector: det}
}

func (s *testServer) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := s.ts.Client().Post(s.ts.URL+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	return resp
}

func sampleBody(t *testing.T, hand detector.LandmarkSet) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"landmarks": hand.Points, "timestamp": 1})
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf(`{"samples":[%s]}`, data)
}

func TestAPI_TrainAndPredict(t *testing.T) {
	s := newTestServer(t)

	// 1. Create and train two letters through the API
	for letter, hand := range map[string]detector.LandmarkSet{
		"H": detector.LetterALandmarks(),
		"I": detector.LetterBLandmarks(),
	} {
		resp := s.post(t, "/api/letters", fmt.Sprintf(`{"letter":%q}`, letter))
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %s status = %d", letter, resp.StatusCode)
		}

		resp = s.post(t, "/api/letters/"+letter+"/samples", sampleBody(t, hand))
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("samples %s status = %d", letter, resp.StatusCode)
		}

		resp = s.post(t, "/api/letters/"+letter+"/train", "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("train %s status = %d", letter, resp.StatusCode)
		}
	}

	// 2. Listen for frame results
	url := "ws" + strings.TrimPrefix(s.ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	waitEmit := func(letter string) {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		for {
			var res app.FrameResult
			if err := conn.ReadJSON(&res); err != nil {
				t.Fatalf("waiting for %s: %v", letter, err)
			}
			if res.Emitted && res.Predicted == letter {
				return
			}
		}
	}

	// 3. Sign H then I
	s.detector.SetHands([]detector.LandmarkSet{detector.LetterALandmarks()})
	resp := s.post(t, "/api/session/start", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status = %d", resp.StatusCode)
	}

	waitEmit("H")
	s.detector.SetHands([]detector.LandmarkSet{detector.LetterBLandmarks()})
	waitEmit("I")

	// 4. End and check the final result
	resp = s.post(t, "/api/session/end", "")
	var final app.FinalResult
	json.NewDecoder(resp.Body).Decode(&final)
	resp.Body.Close()

	if final.Sentence != "HI" || final.Narration != "hi!" {
		t.Errorf("final = %+v", final)
	}

	// 5. The transcript is in the history
	resp, _ = s.ts.Client().Get(s.ts.URL + "/api/sessions")
	var history struct {
		Sessions []store.Session `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&history)
	resp.Body.Close()

	if len(history.Sessions) != 1 || history.Sessions[0].Sentence != "HI" {
		t.Errorf("history = %+v", history.Sessions)
	}
}

func TestAPI_SessionConflicts(t *testing.T) {
	s := newTestServer(t)

	resp := s.post(t, "/api/session/end", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("end before start status = %d, want 409", resp.StatusCode)
	}

	resp = s.post(t, "/api/session/start", "")
	resp.Body.Close()
	resp = s.post(t, "/api/session/start", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", resp.StatusCode)
	}

	resp, _ = s.ts.Client().Get(s.ts.URL + "/api/session")
	var info app.SessionInfo
	json.NewDecoder(resp.Body).Decode(&info)
	resp.Body.Close()
	if !info.Running {
		t.Error("session should be running")
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	s := newTestServer(t)

	health := func() (status string, running, narration bool) {
		t.Helper()
		resp, err := s.ts.Client().Get(s.ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var body struct {
			Status         string `json:"status"`
			SessionRunning bool   `json:"session_running"`
			Narration      bool   `json:"narration"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode health: %v", err)
		}
		return body.Status, body.SessionRunning, body.Narration
	}

	status, running, narration := health()
	if status != "ok" || running || !narration {
		t.Errorf("idle health = %s running=%v narration=%v, want ok false true", status, running, narration)
	}

	resp := s.post(t, "/api/session/start", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status = %d", resp.StatusCode)
	}

	if _, running, _ := health(); !running {
		t.Error("health should report a running session")
	}

	resp = s.post(t, "/api/session/end", "")
	resp.Body.Close()

	if _, running, _ := health(); running {
		t.Error("health should report no session after end")
	}
}
