package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/feature"
)

// ErrNoMatch is returned when no template is within tolerance of the input.
var ErrNoMatch = errors.New("no letter template within tolerance")

// DefaultTolerance is the distance budget for templates that do not set one.
const DefaultTolerance = 0.5

// Template is the reference feature vector for one letter.
type Template struct {
	Letter    domain.Char
	Features  feature.Vector
	Tolerance float64 // Maximum distance for a match
}

// Match represents a matching result between input and a template.
type Match struct {
	Template *Template
	Score    float64 // 0-1, higher is better
	Distance float64 // Summed per-landmark distance
}

// TemplateModel is a nearest-template Model over recorded letter templates.
// It lets users train letters locally without the pretrained model.
type TemplateModel struct {
	mu        sync.RWMutex
	templates map[domain.Char]*Template
}

// NewTemplateModel creates an empty TemplateModel.
func NewTemplateModel() *TemplateModel {
	return &TemplateModel{
		templates: make(map[domain.Char]*Template),
	}
}

// SetTemplate adds or replaces the template for t.Letter.
func (m *TemplateModel) SetTemplate(t *Template) {
	if t == nil || domain.IndexOf(t.Letter) < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.Letter] = t
}

// RemoveTemplate removes a letter's template.
func (m *TemplateModel) RemoveTemplate(letter domain.Char) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.templates, letter)
}

// Len returns the number of loaded templates.
func (m *TemplateModel) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.templates)
}

// Match scores the input against every template of the same dimensionality.
// Returns matches sorted by score in descending order (best matches first).
func (m *TemplateModel) Match(features feature.Vector) []Match {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for _, template := range m.templates {
		if len(template.Features) != len(features) {
			continue
		}

		distance := landmarkDistance(features, template.Features)
		score := 1.0 / (1.0 + distance)

		tolerance := template.Tolerance
		if tolerance <= 0 {
			tolerance = DefaultTolerance
		}
		if distance <= tolerance {
			matches = append(matches, Match{
				Template: template,
				Score:    score,
				Distance: distance,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].Template.Letter < matches[j].Template.Letter
		}
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// Predict returns the class index of the best matching template.
func (m *TemplateModel) Predict(ctx context.Context, features feature.Vector) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(features) == 0 || len(features)%2 != 0 {
		return 0, fmt.Errorf("feature vector has invalid length %d", len(features))
	}
	if m.Len() == 0 {
		return 0, fmt.Errorf("no letter templates loaded")
	}

	matches := m.Match(features)
	if len(matches) == 0 {
		return 0, ErrNoMatch
	}

	return domain.IndexOf(matches[0].Template.Letter), nil
}

// landmarkDistance sums the 2D distance between corresponding landmarks.
func landmarkDistance(a, b feature.Vector) float64 {
	var total float64
	for i := 0; i+1 < len(a) && i+1 < len(b); i += 2 {
		dx := a[i] - b[i]
		dy := a[i+1] - b[i+1]
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}
