package detector

import (
	"context"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand landmark sources.
type Detector interface {
	// Detect analyzes a video frame and returns one LandmarkSet per detected hand.
	// Returns an empty slice if no hands are detected. Detection stops early
	// when ctx ends.
	Detect(ctx context.Context, frame *gocv.Mat) ([]LandmarkSet, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// StaticImageMode treats every frame independently instead of tracking.
	StaticImageMode bool

	// DataDir is searched for the sidecar script and its virtual environment.
	DataDir string
}

// DefaultConfig returns the detector settings the sign classifier was trained with.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.3,
		StaticImageMode: true,
	}
}

// Unavailable returns a Detector whose every call fails with err. It stands
// in when the landmark sidecar cannot be found.
func Unavailable(err error) Detector {
	return unavailable{err: err}
}

type unavailable struct {
	err error
}

func (u unavailable) Detect(context.Context, *gocv.Mat) ([]LandmarkSet, error) { return nil, u.err }
func (u unavailable) Close() error { return nil }
