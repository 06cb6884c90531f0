// Package feature turns hand landmarks into the feature vectors the sign
// classifier was trained on.
package feature

import (
	"errors"

	"github.com/ayusman/bemysenses/internal/detector"
	"github.com/ayusman/bemysenses/internal/domain"
)

var errEmptySet = errors.New("landmark set is empty")

// Vector is a flattened feature vector: (x0, y0, x1, y1, ...).
type Vector []float64

// Normalize translates the landmarks so the hand's bounding-box minimum sits at
// the origin and flattens them into a Vector of length 2N.
//
// Only position is removed. Scale and rotation are kept, matching how the
// classifier's training data was built.
func Normalize(set detector.LandmarkSet) (Vector, error) {
	if set.Empty() {
		return nil, domain.NewError("feature.normalize", domain.KindInvalidInput, errEmptySet)
	}

	minX, minY := set.Points[0].X, set.Points[0].Y
	for _, p := range set.Points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
	}

	vec := make(Vector, 0, 2*len(set.Points))
	for _, p := range set.Points {
		vec = append(vec, p.X-minX, p.Y-minY)
	}

	return vec, nil
}

// Len returns the number of landmarks encoded in the vector.
func (v Vector) Len() int {
	return len(v) / 2
}

// At returns the (x, y) pair for landmark i.
func (v Vector) At(i int) (x, y float64) {
	return v[2*i], v[2*i+1]
}
