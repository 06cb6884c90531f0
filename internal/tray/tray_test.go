package tray

import (
	"errors"
	"strings"
	"testing"
)

func TestTray_Toggle(t *testing.T) {
	tr := New()

	var calls []bool
	tr.OnToggle(func(start bool) error {
		calls = append(calls, start)
		return nil
	})

	tr.handleToggle()
	if !tr.IsRunning() {
		t.Error("first toggle should start a session")
	}
	tr.handleToggle()
	if tr.IsRunning() {
		t.Error("second toggle should end the session")
	}

	if len(calls) != 2 || !calls[0] || calls[1] {
		t.Errorf("callback calls = %v, want [true false]", calls)
	}
}

func TestTray_ToggleErrorKeepsState(t *testing.T) {
	tr := New()
	tr.OnToggle(func(start bool) error { return errors.New("camera unavailable") })

	tr.handleToggle()

	if tr.IsRunning() {
		t.Error("failed start must not mark the session running")
	}
}

func TestTray_Settings(t *testing.T) {
	tr := New()
	called := false
	tr.OnSettings(func() { called = true })

	tr.handleSettings()

	if !called {
		t.Error("settings callback not called")
	}
}

func TestTray_SettersWithoutMenu(t *testing.T) {
	tr := New()

	tr.SetRunning(true)
	tr.SetLast("A")
	tr.SetSentence("HELLO")

	if !tr.IsRunning() || tr.last != "A" || tr.sentence != "HELLO" {
		t.Errorf("state = running %v, last %q, sentence %q", tr.IsRunning(), tr.last, tr.sentence)
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{toggleTitle(false), "▶ Start Session"},
		{toggleTitle(true), "■ End Session"},
		{lastTitle(""), "Last: none"},
		{lastTitle(" "), "Last: space"},
		{lastTitle("Q"), "Last: Q"},
		{sentenceTitle(""), "Sentence: (empty)"},
		{sentenceTitle("HI THERE"), "Sentence: HI THERE"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}

	long := strings.Repeat("AB", 30)
	got := sentenceTitle(long)
	if !strings.HasSuffix(got, long[len(long)-maxSentenceRunes:]) || !strings.Contains(got, "…") {
		t.Errorf("sentenceTitle(long) = %q", got)
	}
}
