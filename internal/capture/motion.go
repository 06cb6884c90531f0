package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// GaussianBlurSize is the blur kernel applied before differencing.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity change that counts as changed.
	DiffThreshold = 25
	// DefaultMotionThreshold is the share of changed pixels, in percent, that counts as motion.
	DefaultMotionThreshold = 1.0
)

// MotionDetector compares each frame with the previous one. It gates the
// detector so a still scene costs no sidecar calls.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	hasPrev   bool
	mu        sync.Mutex
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of pixels change. Non-positive thresholds use the default.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect reports whether frame differs from the previous frame, and by what
// percentage of pixels. The first frame only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	grayBlur(*frame, &blurred)

	if !m.hasPrev {
		blurred.CopyTo(&m.prev)
		m.hasPrev = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100.0

	blurred.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// grayBlur converts src to a blurred single-channel image in dst.
func grayBlur(src gocv.Mat, dst *gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()

	if src.Channels() > 1 {
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	} else {
		src.CopyTo(&gray)
	}

	gocv.GaussianBlur(gray, dst, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)
}

// Reset drops the baseline so the next frame starts a new comparison.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

// Close releases the baseline frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
}

func (m *MotionDetector) clear() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.hasPrev = false
}

// Threshold returns the motion threshold in percent.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// SetThreshold changes the motion threshold. Values <= 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}
