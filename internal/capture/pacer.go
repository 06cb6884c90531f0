package capture

import (
	"sync"
	"time"
)

// Frame rates for the two pacing modes.
const (
	// IdleFPS is the frame rate while nothing moves in view.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a hand is being signed.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to idle.
	IdleTimeout = 2 * time.Second
)

// PacerConfig tunes a Pacer. Zero fields take the package defaults.
type PacerConfig struct {
	IdleFPS     int
	ActiveFPS   int
	IdleTimeout time.Duration
}

// Pacer tracks idle/active mode from motion observations. In idle mode
// frames are not sent to the detector.
type Pacer struct {
	config     PacerConfig
	active     bool
	lastMotion time.Time
	mu         sync.Mutex
}

// NewPacer creates a Pacer in idle mode.
func NewPacer(config PacerConfig) *Pacer {
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = IdleTimeout
	}
	return &Pacer{config: config}
}

// Observe records whether motion was seen at now. It returns the resulting
// mode and whether the mode changed.
func (p *Pacer) Observe(motion bool, now time.Time) (active, changed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if motion {
		p.lastMotion = now
		if !p.active {
			p.active = true
			return true, true
		}
		return true, false
	}

	if p.active && now.Sub(p.lastMotion) > p.config.IdleTimeout {
		p.active = false
		return false, true
	}
	return p.active, false
}

// Active reports the current mode.
func (p *Pacer) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// FPS returns the frame rate for the current mode.
func (p *Pacer) FPS() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return p.config.ActiveFPS
	}
	return p.config.IdleFPS
}

// Interval returns the tick interval for the current mode.
func (p *Pacer) Interval() time.Duration {
	return time.Second / time.Duration(p.FPS())
}

// Reset returns to idle mode.
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
	p.lastMotion = time.Time{}
}
