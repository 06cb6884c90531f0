// Package classifier maps feature vectors to alphabet letters using an
// external model behind the Model interface.
package classifier

import (
	"context"
	"fmt"

	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/feature"
)

// Model is the external classifier: it returns a class index for one vector.
// Implementations are assumed stateless across calls.
type Model interface {
	Predict(ctx context.Context, features feature.Vector) (int, error)
}

// Classifier wraps a Model with the fixed index-to-letter table.
type Classifier struct {
	model Model
}

// New creates a Classifier over the given model.
func New(model Model) *Classifier {
	return &Classifier{model: model}
}

// Classify predicts one letter. Model failures and indices outside [0,25]
// are returned as classification errors; callers skip the frame.
func (c *Classifier) Classify(ctx context.Context, vec feature.Vector) (domain.Char, error) {
	if c.model == nil {
		return 0, domain.NewError("classifier.classify", domain.KindClassification, fmt.Errorf("no model loaded"))
	}

	index, err := c.model.Predict(ctx, vec)
	if err != nil {
		return 0, domain.NewError("classifier.classify", domain.KindClassification, err)
	}

	letter, ok := domain.LetterAt(index)
	if !ok {
		return 0, domain.NewError("classifier.classify", domain.KindClassification,
			fmt.Errorf("class index %d out of range", index))
	}

	return letter, nil
}

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc func(ctx context.Context, features feature.Vector) (int, error)

// Predict calls f.
func (f ModelFunc) Predict(ctx context.Context, features feature.Vector) (int, error) {
	return f(ctx, features)
}
