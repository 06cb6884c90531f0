package detector

import (
	"context"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []LandmarkSet
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []LandmarkSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(ctx context.Context, frame *gocv.Mat) ([]LandmarkSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

func newHand() LandmarkSet {
	return LandmarkSet{
		Points:     make([]Point, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}
}

// LetterALandmarks returns a preset LandmarkSet for the fingerspelled letter A:
// a closed fist with the thumb resting against the side of the index finger.
func LetterALandmarks() LandmarkSet {
	hand := newHand()
	p := hand.Points

	p[Wrist] = Point{X: 0.5, Y: 0.8}

	// Thumb alongside the fist, tip level with the index knuckle
	p[ThumbCMC] = Point{X: 0.55, Y: 0.75}
	p[ThumbMCP] = Point{X: 0.58, Y: 0.70}
	p[ThumbIP] = Point{X: 0.59, Y: 0.65}
	p[ThumbTip] = Point{X: 0.59, Y: 0.61}

	// Fingers curled into the palm
	p[IndexMCP] = Point{X: 0.55, Y: 0.66, Z: -0.02}
	p[IndexPIP] = Point{X: 0.55, Y: 0.62, Z: -0.05}
	p[IndexDIP] = Point{X: 0.54, Y: 0.66, Z: -0.04}
	p[IndexTip] = Point{X: 0.54, Y: 0.69, Z: -0.02}

	p[MiddleMCP] = Point{X: 0.50, Y: 0.65, Z: -0.02}
	p[MiddlePIP] = Point{X: 0.50, Y: 0.61, Z: -0.05}
	p[MiddleDIP] = Point{X: 0.49, Y: 0.65, Z: -0.04}
	p[MiddleTip] = Point{X: 0.49, Y: 0.68, Z: -0.02}

	p[RingMCP] = Point{X: 0.45, Y: 0.66, Z: -0.02}
	p[RingPIP] = Point{X: 0.45, Y: 0.62, Z: -0.05}
	p[RingDIP] = Point{X: 0.44, Y: 0.66, Z: -0.04}
	p[RingTip] = Point{X: 0.44, Y: 0.69, Z: -0.02}

	p[PinkyMCP] = Point{X: 0.41, Y: 0.68, Z: -0.02}
	p[PinkyPIP] = Point{X: 0.41, Y: 0.65, Z: -0.05}
	p[PinkyDIP] = Point{X: 0.40, Y: 0.68, Z: -0.04}
	p[PinkyTip] = Point{X: 0.40, Y: 0.71, Z: -0.02}

	return hand
}

// LetterBLandmarks returns a preset LandmarkSet for the letter B:
// a flat hand with all four fingers extended and the thumb folded across the palm.
func LetterBLandmarks() LandmarkSet {
	hand := newHand()
	p := hand.Points

	p[Wrist] = Point{X: 0.5, Y: 0.8}

	// Thumb folded across the palm
	p[ThumbCMC] = Point{X: 0.55, Y: 0.76, Z: 0.02}
	p[ThumbMCP] = Point{X: 0.56, Y: 0.71, Z: 0.03}
	p[ThumbIP] = Point{X: 0.52, Y: 0.68, Z: 0.03}
	p[ThumbTip] = Point{X: 0.48, Y: 0.67, Z: 0.03}

	// Fingers extended upward and held together
	p[IndexMCP] = Point{X: 0.55, Y: 0.66}
	p[IndexPIP] = Point{X: 0.55, Y: 0.53}
	p[IndexDIP] = Point{X: 0.55, Y: 0.44}
	p[IndexTip] = Point{X: 0.55, Y: 0.36}

	p[MiddleMCP] = Point{X: 0.51, Y: 0.65}
	p[MiddlePIP] = Point{X: 0.51, Y: 0.51}
	p[MiddleDIP] = Point{X: 0.51, Y: 0.41}
	p[MiddleTip] = Point{X: 0.51, Y: 0.32}

	p[RingMCP] = Point{X: 0.47, Y: 0.66}
	p[RingPIP] = Point{X: 0.47, Y: 0.53}
	p[RingDIP] = Point{X: 0.47, Y: 0.44}
	p[RingTip] = Point{X: 0.47, Y: 0.36}

	p[PinkyMCP] = Point{X: 0.43, Y: 0.68}
	p[PinkyPIP] = Point{X: 0.43, Y: 0.58}
	p[PinkyDIP] = Point{X: 0.43, Y: 0.50}
	p[PinkyTip] = Point{X: 0.43, Y: 0.43}

	return hand
}

// LetterLLandmarks returns a preset LandmarkSet for the letter L:
// index finger pointing up and thumb extended sideways, other fingers curled.
func LetterLLandmarks() LandmarkSet {
	hand := LetterALandmarks()
	p := hand.Points

	// Thumb out to the side
	p[ThumbCMC] = Point{X: 0.56, Y: 0.76}
	p[ThumbMCP] = Point{X: 0.63, Y: 0.72}
	p[ThumbIP] = Point{X: 0.69, Y: 0.69}
	p[ThumbTip] = Point{X: 0.75, Y: 0.67}

	// Index straight up
	p[IndexPIP] = Point{X: 0.55, Y: 0.53}
	p[IndexDIP] = Point{X: 0.55, Y: 0.44}
	p[IndexTip] = Point{X: 0.55, Y: 0.36}

	return hand
}

// Translate returns a copy of hand shifted by (dx, dy) in image coordinates.
func Translate(hand LandmarkSet, dx, dy float64) LandmarkSet {
	moved := hand
	moved.Points = make([]Point, len(hand.Points))
	for i, p := range hand.Points {
		moved.Points[i] = Point{X: p.X + dx, Y: p.Y + dy, Z: p.Z}
	}
	return moved
}
