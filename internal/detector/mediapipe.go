package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/bemysenses/internal/pyproc"
)

// MediaPipeScript is the sidecar that runs MediaPipe Hands.
const MediaPipeScript = "mediapipe_service.py"

// MediaPipeDetector implements Detector using a Python MediaPipe sidecar.
// Frames are sent JPEG encoded; the sidecar answers with
// {"hands":[{"points":[{"x":..,"y":..,"z":..}],"handedness":"Right","score":0.9}]}.
type MediaPipeDetector struct {
	config Config
	proc   *pyproc.Process
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config, logger *zap.Logger) (*MediaPipeDetector, error) {
	proc, err := pyproc.New(pyproc.Config{
		Script:  MediaPipeScript,
		Args:    sidecarArgs(config),
		DataDir: config.DataDir,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	return &MediaPipeDetector{
		config: config,
		proc:   proc,
	}, nil
}

func sidecarArgs(config Config) []string {
	args := []string{
		"--max-hands", strconv.Itoa(config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(config.MinConfidence, 'f', -1, 64),
	}
	if config.StaticImageMode {
		args = append(args, "--static-image-mode")
	}
	return args
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *MediaPipeDetector) Detect(ctx context.Context, frame *gocv.Mat) ([]LandmarkSet, error) {
	if frame == nil || frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	// Encode frame as JPEG
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	line, err := d.proc.Call(ctx, buf.GetBytes())
	if err != nil {
		return nil, err
	}

	return parseResponse(line)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	return d.proc.Close()
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []Point `json:"points"`
	Handedness string  `json:"handedness"`
	Score      float64 `json:"score"`
}

func parseResponse(line []byte) ([]LandmarkSet, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe: %s", response.Error)
	}

	result := make([]LandmarkSet, 0, len(response.Hands))
	for _, h := range response.Hands {
		result = append(result, LandmarkSet{
			Points:     h.Points,
			Handedness: h.Handedness,
			Score:      h.Score,
		})
	}

	return result, nil
}
