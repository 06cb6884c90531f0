// Package narrator completes and speaks the accumulated sentence off the
// frame loop. Callers post requests and read the latest result; they never
// wait for the language model or the speech engine.
package narrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/speech"
)

// DefaultTimeout bounds one completion call.
const DefaultTimeout = 10 * time.Second

// Completer extends a partial sentence into natural text.
type Completer interface {
	Complete(ctx context.Context, text string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, text string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Result is one finished completion.
type Result struct {
	Input   string    `json:"input"`
	Text    string    `json:"text,omitempty"`
	Error   string    `json:"error,omitempty"`
	Display string    `json:"display"`
	At      time.Time `json:"at"`
}

// OK reports whether the completion succeeded.
func (r Result) OK() bool {
	return r.Error == ""
}

// DisplayError is how a failed completion is shown to the user.
func DisplayError(err error) string {
	return fmt.Sprintf("AI generation error: %v", err)
}

// Config holds narrator settings.
type Config struct {
	Timeout time.Duration
}

// Narrator runs completions and speech on background workers. Requests are
// coalesced: only the most recent pending text of each kind is processed.
type Narrator struct {
	completer Completer
	speaker   speech.Speaker
	timeout   time.Duration
	logger    *zap.Logger

	completions *mailbox
	speeches    *mailbox

	mu       sync.RWMutex
	latest   Result
	lastPost string
	// gen advances on Reset and Final so late async results are dropped.
	gen uint64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Narrator. A nil completer disables completion and a nil
// speaker disables speech; the narrator still accepts requests.
func New(config Config, completer Completer, speaker speech.Speaker, logger *zap.Logger) *Narrator {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if speaker == nil {
		speaker = speech.Nop{}
	}

	return &Narrator{
		completer:   completer,
		speaker:     speaker,
		timeout:     config.Timeout,
		logger:      logger,
		completions: newMailbox(),
		speeches:    newMailbox(),
	}
}

// Start launches the workers. They stop when ctx is cancelled or Stop is called.
func (n *Narrator) Start(ctx context.Context) {
	ctx, n.cancel = context.WithCancel(ctx)

	n.wg.Add(2)
	go n.run(ctx, n.completions, n.completeAsync)
	go n.run(ctx, n.speeches, n.speakAsync)
}

// Stop halts the workers and waits for in-flight work to return.
func (n *Narrator) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	n.wg.Wait()
}

// Enabled reports whether a completer is configured.
func (n *Narrator) Enabled() bool {
	return n.completer != nil
}

// Post queues text for completion. Text equal to the previous post is
// ignored, so a held sentence is completed only once.
func (n *Narrator) Post(text string) {
	if n.completer == nil || strings.TrimSpace(text) == "" {
		return
	}

	n.mu.Lock()
	if text == n.lastPost {
		n.mu.Unlock()
		return
	}
	n.lastPost = text
	n.mu.Unlock()

	n.completions.put(text)
}

// Speak queues text for speech.
func (n *Narrator) Speak(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	n.speeches.put(text)
}

// Latest returns the most recent finished completion.
func (n *Narrator) Latest() Result {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.latest
}

// Reset clears the latest result and the duplicate filter for a new session.
func (n *Narrator) Reset() {
	n.completions.drain()
	n.mu.Lock()
	n.latest = Result{}
	n.lastPost = ""
	n.gen++
	n.mu.Unlock()
}

// Final runs one completion synchronously, bounded by the configured
// timeout, and records it as the latest result. Pending posts are dropped.
func (n *Narrator) Final(ctx context.Context, text string) Result {
	n.completions.drain()
	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.mu.Unlock()

	if n.completer == nil || strings.TrimSpace(text) == "" {
		return Result{Input: text, At: time.Now()}
	}

	res := n.complete(ctx, text)
	n.store(gen, res)
	return res
}

func (n *Narrator) run(ctx context.Context, box *mailbox, handle func(context.Context, string)) {
	defer n.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-box.ready:
			text, ok := box.take()
			if !ok {
				continue
			}
			handle(ctx, text)
		}
	}
}

func (n *Narrator) completeAsync(ctx context.Context, text string) {
	n.mu.RLock()
	gen := n.gen
	n.mu.RUnlock()

	res := n.complete(ctx, text)
	if ctx.Err() != nil {
		return
	}
	n.store(gen, res)
}

func (n *Narrator) speakAsync(ctx context.Context, text string) {
	if err := n.speaker.Speak(ctx, text); err != nil && ctx.Err() == nil {
		n.logger.Warn("Speech failed", zap.Error(err))
	}
}

func (n *Narrator) complete(ctx context.Context, text string) Result {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	res := Result{Input: text}
	out, err := n.completer.Complete(ctx, text)
	res.At = time.Now()

	if err != nil {
		opErr := domain.NewError("narrator.complete", domain.KindNarration, err)
		res.Error = opErr.Error()
		res.Display = DisplayError(err)
		n.logger.Warn("Completion failed", zap.Error(opErr))
		sentry.CaptureException(opErr)
		return res
	}

	res.Text = out
	res.Display = out
	return res
}

func (n *Narrator) store(gen uint64, res Result) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		return
	}
	n.latest = res
}

// mailbox holds at most one pending value; a newer put replaces an older one.
type mailbox struct {
	mu    sync.Mutex
	value string
	full  bool
	ready chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

func (m *mailbox) put(v string) {
	m.mu.Lock()
	m.value = v
	m.full = true
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.full {
		return "", false
	}
	v := m.value
	m.value = ""
	m.full = false
	return v, true
}

func (m *mailbox) drain() {
	m.take()
}
