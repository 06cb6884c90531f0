// Package tray provides a system tray interface for the BeMySenses sign language system.
package tray

import (
	"sync"
	"unicode/utf8"

	"github.com/getlantern/systray"
)

// maxSentenceRunes is how much of the sentence fits in a menu title.
const maxSentenceRunes = 32

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(start bool) error
	onSettings func()
	onQuit     func()
	running    bool
	last       string
	sentence   string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle   *systray.MenuItem
	menuLast     *systray.MenuItem
	menuSentence *systray.MenuItem
}

// New creates a new Tray with no session running.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback that starts (start=true) or ends a session.
// When it returns an error the menu keeps its previous state.
func (t *Tray) OnToggle(fn func(start bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("BeMySenses")
	systray.SetTooltip("BeMySenses Sign Language")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.running), "Start or end a prediction session")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last predicted character")
	t.menuLast.Disable()
	t.menuSentence = systray.AddMenuItem(sentenceTitle(t.sentence), "Current sentence")
	t.menuSentence.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit BeMySenses")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle starts or ends a session through the callback.
func (t *Tray) handleToggle() {
	t.mu.RLock()
	start := !t.running
	callback := t.onToggle
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		if err := callback(start); err != nil {
			return
		}
	}

	t.SetRunning(start)
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetRunning updates the session toggle, e.g. when a session was started
// from the web UI.
func (t *Tray) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = running
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(running))
	}
}

// SetLast updates the last predicted character.
func (t *Tray) SetLast(char string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = char
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(char))
	}
}

// SetSentence updates the sentence display.
func (t *Tray) SetSentence(sentence string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sentence = sentence
	if t.menuSentence != nil {
		t.menuSentence.SetTitle(sentenceTitle(sentence))
	}
}

// IsRunning reports whether the tray shows a running session.
func (t *Tray) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

func toggleTitle(running bool) string {
	if running {
		return "■ End Session"
	}
	return "▶ Start Session"
}

func lastTitle(char string) string {
	switch char {
	case "":
		return "Last: none"
	case " ":
		return "Last: space"
	}
	return "Last: " + char
}

// sentenceTitle keeps the tail of long sentences, which is where new
// letters appear.
func sentenceTitle(sentence string) string {
	if sentence == "" {
		return "Sentence: (empty)"
	}
	if n := utf8.RuneCountInString(sentence); n > maxSentenceRunes {
		runes := []rune(sentence)
		sentence = "…" + string(runes[n-maxSentenceRunes:])
	}
	return "Sentence: " + sentence
}
