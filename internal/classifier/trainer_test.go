package classifier

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ayusman/bemysenses/internal/detector"
)

func sampleJSON(t *testing.T, hand detector.LandmarkSet) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(Sample{Landmarks: hand.Points, Timestamp: 1})
	if err != nil {
		t.Fatalf("marshal sample: %v", err)
	}
	return data
}

func TestTrainer_Train(t *testing.T) {
	trainer := NewTrainer()

	t.Run("translated copies average to the same template", func(t *testing.T) {
		hand := detector.LetterALandmarks()
		samples := []json.RawMessage{
			sampleJSON(t, hand),
			sampleJSON(t, detector.Translate(hand, 0.1, 0.05)),
			sampleJSON(t, detector.Translate(hand, -0.2, 0.1)),
		}

		got, err := trainer.Train(samples)
		if err != nil {
			t.Fatalf("Train() error = %v", err)
		}

		want := mustNormalize(t, hand)
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-9 {
				t.Errorf("component %d = %f, want %f", i, got[i], want[i])
			}
		}
	})

	t.Run("averages component-wise", func(t *testing.T) {
		samples := []json.RawMessage{
			json.RawMessage(`{"landmarks":[{"x":0,"y":0},{"x":0.2,"y":0.4}]}`),
			json.RawMessage(`{"landmarks":[{"x":0,"y":0},{"x":0.4,"y":0.2}]}`),
		}

		got, err := trainer.Train(samples)
		if err != nil {
			t.Fatalf("Train() error = %v", err)
		}
		want := []float64{0, 0, 0.3, 0.3}
		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-9 {
				t.Errorf("component %d = %f, want %f", i, got[i], want[i])
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			samples []json.RawMessage
		}{
			{name: "no samples", samples: nil},
			{name: "invalid json", samples: []json.RawMessage{json.RawMessage(`{`)}},
			{name: "no landmarks", samples: []json.RawMessage{json.RawMessage(`{"landmarks":[]}`)}},
			{name: "mismatched counts", samples: []json.RawMessage{
				json.RawMessage(`{"landmarks":[{"x":0,"y":0}]}`),
				json.RawMessage(`{"landmarks":[{"x":0,"y":0},{"x":1,"y":1}]}`),
			}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := trainer.Train(tt.samples); err == nil {
					t.Error("expected error")
				}
			})
		}
	})
}
