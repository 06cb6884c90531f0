package classifier

import (
	"encoding/json"
	"fmt"

	"github.com/ayusman/bemysenses/internal/detector"
	"github.com/ayusman/bemysenses/internal/feature"
)

// Trainer turns recorded samples into letter templates.
type Trainer struct{}

// NewTrainer creates a new Trainer instance.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// Sample is one recorded hand pose for a letter.
type Sample struct {
	Landmarks []detector.Point `json:"landmarks"`
	Timestamp int64            `json:"timestamp"`
}

// Train normalizes every sample and averages the resulting vectors.
func (t *Trainer) Train(samples []json.RawMessage) (feature.Vector, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	vectors := make([]feature.Vector, 0, len(samples))
	for i, raw := range samples {
		var sample Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("failed to parse sample %d: %w", i, err)
		}

		if len(sample.Landmarks) == 0 {
			return nil, fmt.Errorf("sample %d has no landmarks", i)
		}

		vec, err := feature.Normalize(detector.LandmarkSet{Points: sample.Landmarks})
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		vectors = append(vectors, vec)
	}

	// Every sample must come from the same landmark model
	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("sample %d has %d landmarks, expected %d", i, vec.Len(), dim/2)
		}
	}

	averaged := make(feature.Vector, dim)
	n := float64(len(vectors))
	for _, vec := range vectors {
		for i, v := range vec {
			averaged[i] += v / n
		}
	}

	return averaged, nil
}
