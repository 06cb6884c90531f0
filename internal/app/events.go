package app

import (
	"sync"
	"time"
)

// FrameResult is what one pipeline tick produced.
type FrameResult struct {
	Seq       uint64    `json:"seq"`
	At        time.Time `json:"at"`
	SessionID string    `json:"session_id"`
	Active    bool      `json:"active"`
	Hands     int       `json:"hands"`
	Predicted string    `json:"predicted,omitempty"`
	Emitted   bool      `json:"emitted"`
	Sentence  string    `json:"sentence"`
	Narration string    `json:"narration,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// subscriberBuffer is how many results a slow subscriber may lag before
// results are dropped for it.
const subscriberBuffer = 32

// broadcaster fans frame results out to subscribers without blocking the loop.
type broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan FrameResult
	nextID int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan FrameResult)}
}

func (b *broadcaster) subscribe() (<-chan FrameResult, func()) {
	ch := make(chan FrameResult, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (b *broadcaster) publish(r FrameResult) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- r:
		default:
		}
	}
}

func (b *broadcaster) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Subscribe returns a channel of frame results and a cancel function.
// Results are dropped for subscribers that fall behind.
func (a *App) Subscribe() (<-chan FrameResult, func()) {
	return a.events.subscribe()
}

// LastFrame returns the most recent frame result.
func (a *App) LastFrame() FrameResult {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	return a.last
}
