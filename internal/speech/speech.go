// Package speech synthesizes spoken audio from text.
package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayusman/bemysenses/internal/domain"
)

// Speaker says text out loud. Speak returns once playback has finished or failed.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Nop discards all speech. It is used when speech is disabled.
type Nop struct{}

// Speak does nothing.
func (Nop) Speak(ctx context.Context, text string) error { return nil }

func checkText(op, text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.NewError(op, domain.KindInvalidInput, fmt.Errorf("nothing to say"))
	}
	return nil
}
