package classifier

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/feature"
	"github.com/ayusman/bemysenses/internal/pyproc"
)

// SubprocessScript is the sidecar that loads the pretrained model file.
const SubprocessScript = "classifier_service.py"

// SubprocessModel serves predictions from a pretrained model hosted by a
// Python sidecar. Requests are {"features":[...]}; responses are
// {"index":n} or {"error":"..."}.
type SubprocessModel struct {
	proc *pyproc.Process
}

// NewSubprocessModel prepares the sidecar for the model at modelPath.
func NewSubprocessModel(modelPath, dataDir string, logger *zap.Logger) (*SubprocessModel, error) {
	proc, err := pyproc.New(pyproc.Config{
		Script:  SubprocessScript,
		Args:    []string{"--model", modelPath},
		DataDir: dataDir,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return &SubprocessModel{proc: proc}, nil
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Index *int   `json:"index"`
	Error string `json:"error"`
}

// Predict sends one vector to the sidecar. If ctx ends first the sidecar is
// killed and ctx's error is returned.
func (m *SubprocessModel) Predict(ctx context.Context, features feature.Vector) (int, error) {
	payload, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("marshal features: %w", err)
	}

	line, err := m.proc.Call(ctx, payload)
	if err != nil {
		return 0, err
	}

	return parsePrediction(line)
}

func parsePrediction(line []byte) (int, error) {
	var resp predictResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return 0, fmt.Errorf("parse prediction: %w", err)
	}
	if resp.Error != "" {
		return 0, fmt.Errorf("model rejected input: %s", resp.Error)
	}
	if resp.Index == nil {
		return 0, fmt.Errorf("prediction missing index")
	}
	return *resp.Index, nil
}

// Close stops the sidecar.
func (m *SubprocessModel) Close() error {
	return m.proc.Close()
}
