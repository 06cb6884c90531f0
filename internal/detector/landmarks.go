// Package detector provides the hand-landmark source for the sign pipeline.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is one landmark in normalized image coordinates.
// X and Y are in [0,1]; Z is relative depth and is not used for features.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LandmarkSet is the ordered set of landmarks for one detected hand in one frame.
type LandmarkSet struct {
	Points     []Point `json:"points"`
	Handedness string  `json:"handedness"` // "Left" or "Right"
	Score      float64 `json:"score"`
}

// Len returns the number of landmarks in the set.
func (s LandmarkSet) Len() int {
	return len(s.Points)
}

// Empty reports whether the set has no landmarks.
func (s LandmarkSet) Empty() bool {
	return len(s.Points) == 0
}

// Last returns the hand that the pipeline uses when several are detected.
// The landmark source gives no ordering guarantee across hands, so this is
// simply the last one reported.
func Last(hands []LandmarkSet) (LandmarkSet, bool) {
	if len(hands) == 0 {
		return LandmarkSet{}, false
	}
	return hands[len(hands)-1], true
}
