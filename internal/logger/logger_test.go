package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug", Development: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}

	log, err = New(Config{Level: "warn"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}

	if _, err := New(Config{Level: "nope"}); err == nil {
		t.Error("expected error for bad level")
	}
}
