// Package capture reads video frames from a camera with GoCV (OpenCV) and
// decides when a frame is worth running hand detection on.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/bemysenses/internal/domain"
)

// Default camera settings
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera is a frame source. ReadFrame returns a Mat the caller must close.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// deviceCamera captures from a local video device.
type deviceCamera struct {
	deviceID int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	fps      int
}

// NewCamera creates a Camera for the given device ID at DefaultFPS.
func NewCamera(deviceID int) Camera {
	return &deviceCamera{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// Open acquires the device at 640x480. Failure is a capture_unavailable
// error, which aborts session start.
func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return domain.NewError("capture.open", domain.KindCaptureUnavailable,
			fmt.Errorf("device %d: %w", c.deviceID, err))
	}
	if !vc.IsOpened() {
		vc.Close()
		return domain.NewError("capture.open", domain.KindCaptureUnavailable,
			fmt.Errorf("device %d could not be opened", c.deviceID))
	}

	vc.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	vc.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = vc
	return nil
}

// Close releases the device. Closing a closed camera is a no-op.
func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	return err
}

// ReadFrame grabs one frame.
func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// SetFPS changes the capture rate. Values <= 0 are ignored.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current capture rate.
func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether the device is held.
func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
