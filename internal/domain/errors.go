package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrClassification     = errors.New("classification failed")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrNarration          = errors.New("narration failed")
	ErrCaptureUnavailable = errors.New("capture source unavailable")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "invalid_input"
	KindClassification     ErrorKind = "classification"
	KindAssetNotFound      ErrorKind = "asset_not_found"
	KindNarration          ErrorKind = "narration"
	KindCaptureUnavailable ErrorKind = "capture_unavailable"
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidInput:       ErrInvalidInput,
	KindClassification:     ErrClassification,
	KindAssetNotFound:      ErrAssetNotFound,
	KindNarration:          ErrNarration,
	KindCaptureUnavailable: ErrCaptureUnavailable,
}

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // Optional: relevant file path
	Err  error
}

// Fatal reports whether an error of this kind must abort the caller.
// Only capture acquisition at session start is fatal; every per-frame
// kind is skipped and logged.
func (k ErrorKind) Fatal() bool {
	return k == KindCaptureUnavailable
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match an OpError against the sentinel of its kind.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	return kindSentinels[e.Kind] == target
}

// IsKind helps callers classify errors without depending on adapter packages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// NewError builds an OpError.
func NewError(op string, kind ErrorKind, err error) *OpError {
	return &OpError{Op: op, Kind: kind, Err: err}
}
