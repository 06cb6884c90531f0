package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("model rejected input shape")
	err := NewError("classifier.classify", KindClassification, root)

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}
	if !errors.Is(err, ErrClassification) {
		t.Fatalf("expected errors.Is to match kind sentinel")
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Fatalf("did not expect match with a different sentinel")
	}
	if !IsKind(err, KindClassification) {
		t.Fatalf("expected IsKind to match")
	}
	if !strings.Contains(err.Error(), "classifier.classify: classification") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestOpErrorPath(t *testing.T) {
	err := &OpError{Op: "translate.load", Kind: KindAssetNotFound, Path: "/x/a.png"}
	if !strings.Contains(err.Error(), "path=/x/a.png") {
		t.Fatalf("expected path in error, got %q", err.Error())
	}
}

func TestIsKindWrapped(t *testing.T) {
	inner := NewError("feature.normalize", KindInvalidInput, nil)
	wrapped := errors.Join(errors.New("frame skipped"), inner)
	if !IsKind(wrapped, KindInvalidInput) {
		t.Fatalf("expected IsKind through wrapping")
	}
	if IsKind(errors.New("plain"), KindInvalidInput) {
		t.Fatalf("plain errors have no kind")
	}
}

func TestErrorKindFatal(t *testing.T) {
	tests := []struct {
		kind  ErrorKind
		fatal bool
	}{
		{KindInvalidInput, false},
		{KindClassification, false},
		{KindAssetNotFound, false},
		{KindNarration, false},
		{KindCaptureUnavailable, true},
	}
	for _, tt := range tests {
		if got := tt.kind.Fatal(); got != tt.fatal {
			t.Errorf("%s.Fatal() = %v, want %v", tt.kind, got, tt.fatal)
		}
	}
}
