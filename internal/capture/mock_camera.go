package capture

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back frames from memory. It is used by tests and by the
// app when no device is configured.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	fps     int
	openErr error
	reads   int
	mu      sync.Mutex
	running bool
}

// NewMockCamera creates a MockCamera over frames. With loop set, playback
// restarts after the last frame; otherwise ReadFrame fails.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

// BlankFrame returns a black 3-channel frame. The caller closes it.
func BlankFrame(width, height int) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	return &mat
}

// MovingSquareFrames returns n black frames with a white square that moves
// right by step pixels per frame, wrapping at the edge. Looped playback
// reads as continuous motion. The caller closes the frames.
func MovingSquareFrames(n, width, height, size, step int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		frame := BlankFrame(width, height)
		x := (i * step) % max(width-size, 1)
		y := (height - size) / 2
		gocv.Rectangle(frame, image.Rect(x, y, x+size, y+size), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
		frames[i] = frame
	}
	return frames
}

// SetOpenError makes the next Open calls fail with err.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return nil, errors.New("no frames available")
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, errors.New("no more frames")
		}
		c.index = 0
	}

	// Clone so callers can close what they get
	frame := c.frames[c.index].Clone()
	c.index++
	c.reads++

	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reads returns how many frames have been served.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// SetFrames replaces the frame sequence
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
