// Package sentence turns a stream of per-frame letter predictions into a
// stable character stream and a growing sentence.
package sentence

import (
	"sync"

	"github.com/ayusman/bemysenses/internal/domain"
)

// Phase is the accumulator's state for the current session.
type Phase int

const (
	// Idle means no character has been accepted yet.
	Idle Phase = iota
	// Holding means the last accepted character is being held.
	Holding
	// Ended means the session is over and the state is frozen.
	Ended
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// State is the sentence built during one session.
// Last equals the final element of Text whenever HasLast is set.
type State struct {
	Text    []domain.Char
	Last    domain.Char
	HasLast bool
}

// Snapshot is a read-only copy of the accumulator for other goroutines.
type Snapshot struct {
	Text    string `json:"text"`
	Last    string `json:"last,omitempty"`
	Phase   string `json:"phase"`
	Length  int    `json:"length"`
	Version uint64 `json:"version"`
}

// Accumulator applies edge-triggered debouncing: a held gesture yields one
// character, and a new character is accepted only when the prediction changes.
// There is no dwell time, so a single frame is enough to register a change.
//
// Apply is meant to be called from the frame loop only; Snapshot is safe from
// any goroutine.
type Accumulator struct {
	mu      sync.RWMutex
	state   State
	ended   bool
	version uint64
}

// NewAccumulator creates an accumulator in the Idle phase.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Start resets the sentence for a new session.
func (a *Accumulator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = State{}
	a.ended = false
	a.version++
}

// Apply feeds one prediction. It returns true when c was appended.
// Repeats of the last character and predictions after End are discarded.
func (a *Accumulator) Apply(c domain.Char) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ended {
		return false
	}
	if a.state.HasLast && c == a.state.Last {
		return false
	}

	a.state.Text = append(a.state.Text, c)
	a.state.Last = c
	a.state.HasLast = true
	a.version++
	return true
}

// End freezes the sentence and returns it. Calling End again returns the same text.
func (a *Accumulator) End() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ended {
		a.ended = true
		a.version++
	}
	return domain.Join(a.state.Text)
}

// Ended reports whether the session has ended.
func (a *Accumulator) Ended() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ended
}

// Phase returns the current phase.
func (a *Accumulator) Phase() Phase {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.phaseLocked()
}

func (a *Accumulator) phaseLocked() Phase {
	switch {
	case a.ended:
		return Ended
	case a.state.HasLast:
		return Holding
	default:
		return Idle
	}
}

// Text returns the accumulated sentence.
func (a *Accumulator) Text() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return domain.Join(a.state.Text)
}

// State returns a deep copy of the sentence state.
func (a *Accumulator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.state
	s.Text = append([]domain.Char(nil), a.state.Text...)
	return s
}

// Snapshot returns a copy suitable for narration and display.
func (a *Accumulator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap := Snapshot{
		Text:    domain.Join(a.state.Text),
		Phase:   a.phaseLocked().String(),
		Length:  len(a.state.Text),
		Version: a.version,
	}
	if a.state.HasLast {
		snap.Last = a.state.Last.String()
	}
	return snap
}
