package app

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/narrator"
	"github.com/ayusman/bemysenses/internal/store"
)

// session is one running prediction session.
type session struct {
	id        string
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	seq       uint64
}

// SessionInfo describes the current or last session.
type SessionInfo struct {
	ID        string     `json:"id,omitempty"`
	Running   bool       `json:"running"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Sentence  string     `json:"sentence"`
	Last      string     `json:"last,omitempty"`
	Narration string     `json:"narration,omitempty"`
	Active    bool       `json:"active"`
}

// FinalResult is returned when a session ends.
type FinalResult struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Sentence  string    `json:"sentence"`
	Narration string    `json:"narration"`
	// NarrationError is set when the final completion failed.
	NarrationError string `json:"narration_error,omitempty"`
}

// StartSession resets the sentence, acquires the camera and starts the
// frame loop. Failure to open the camera is the only fatal error.
func (a *App) StartSession() (SessionInfo, error) {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return a.snapshotLocked(), ErrSessionRunning
	}

	if err := a.camera.Open(); err != nil {
		if !domain.IsKind(err, domain.KindCaptureUnavailable) {
			err = domain.NewError("app.start_session", domain.KindCaptureUnavailable, err)
		}
		a.logger.Error("Failed to open camera", zap.Error(err))
		sentry.CaptureException(err)
		return SessionInfo{}, err
	}
	a.camera.SetFPS(a.pacer.FPS())

	a.sentence.Start()
	a.narrator.Reset()
	a.motion.Reset()
	a.pacer.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:        uuid.NewString(),
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	if a.config.Store != nil {
		if err := a.config.Store.Sessions().Create(sessionRow(s)); err != nil {
			a.logger.Warn("Failed to record session start", zap.Error(err))
		}
	}

	a.session = s
	a.lastFinal = nil

	a.frameMu.Lock()
	a.last = FrameResult{SessionID: s.id}
	a.frameMu.Unlock()

	go a.runPipeline(ctx, s)

	a.logger.Info("Session started", zap.String("session", s.id))
	return a.snapshotLocked(), nil
}

// EndSession stops the frame loop, freezes the sentence and runs the final
// completion. A detector or model call still in flight is cancelled; if it
// does not return within the stop timeout its result is discarded. Calling
// EndSession again returns the same result; ErrNoSession means no session
// was ever started.
func (a *App) EndSession(ctx context.Context) (FinalResult, error) {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	a.mu.Lock()
	s := a.session
	if s == nil {
		defer a.mu.Unlock()
		if a.lastFinal != nil {
			return *a.lastFinal, nil
		}
		return FinalResult{}, ErrNoSession
	}
	s.cancel()
	text := a.sentence.End()
	a.session = nil
	a.mu.Unlock()

	a.awaitPipeline(ctx, s)

	if err := a.camera.Close(); err != nil {
		a.logger.Warn("Error closing camera", zap.Error(err))
	}

	final := FinalResult{
		SessionID: s.id,
		StartedAt: s.startedAt,
		EndedAt:   time.Now(),
		Sentence:  text,
	}

	res := a.narrator.Final(ctx, text)
	final.Narration = res.Display
	if !res.OK() {
		final.NarrationError = res.Error
	}

	if a.config.Store != nil {
		if err := a.config.Store.Sessions().Finish(s.id, final.EndedAt, final.Sentence, final.Narration); err != nil {
			a.logger.Warn("Failed to record session end", zap.Error(err))
		}
	}

	a.mu.Lock()
	a.lastFinal = &final
	a.mu.Unlock()

	a.logger.Info("Session ended",
		zap.String("session", s.id),
		zap.String("sentence", final.Sentence),
		zap.Duration("duration", final.EndedAt.Sub(final.StartedAt)),
	)
	return final, nil
}

// awaitPipeline waits for a cancelled frame loop to exit. A loop stuck in a
// call that ignores cancellation is abandoned; it exits on its own once the
// call returns and never touches the frozen sentence.
func (a *App) awaitPipeline(ctx context.Context, s *session) {
	timer := time.NewTimer(a.config.StopTimeout)
	defer timer.Stop()

	select {
	case <-s.done:
	case <-timer.C:
		a.logger.Warn("Frame loop did not stop in time, abandoning it", zap.String("session", s.id))
	case <-ctx.Done():
		a.logger.Warn("Frame loop still running when end was cancelled", zap.String("session", s.id))
	}
}

// Running reports whether a session is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

// Snapshot describes the current session, or the last one if none is running.
func (a *App) Snapshot() SessionInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *App) snapshotLocked() SessionInfo {
	snap := a.sentence.Snapshot()
	info := SessionInfo{
		Sentence:  snap.Text,
		Last:      snap.Last,
		Narration: a.narrator.Latest().Display,
	}

	switch {
	case a.session != nil:
		started := a.session.startedAt
		info.ID = a.session.id
		info.Running = true
		info.StartedAt = &started
		info.Active = a.pacer.Active()
	case a.lastFinal != nil:
		started := a.lastFinal.StartedAt
		info.ID = a.lastFinal.SessionID
		info.StartedAt = &started
		info.Narration = a.lastFinal.Narration
	}
	return info
}

// Speak queues text for speech without waiting.
func (a *App) Speak(text string) {
	a.narrator.Speak(text)
}

func sessionRow(s *session) *store.Session {
	return &store.Session{ID: s.id, StartedAt: s.startedAt}
}

// narrationDisplay is the text shown for the narrator's latest result.
func narrationDisplay(n *narrator.Narrator) string {
	return n.Latest().Display
}
