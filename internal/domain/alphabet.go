// Package domain holds the alphabet and error taxonomy shared by the
// gesture-to-text pipeline and its adapters.
package domain

import (
	"fmt"
	"unicode"
)

// Char is a single symbol of the sign alphabet: 'A'-'Z' or a space.
type Char rune

// Space is the only non-letter symbol in the alphabet.
const Space Char = ' '

// NumLetters is the number of letters the classifier can produce.
const NumLetters = 26

// LetterAt maps a class index to its letter. Indices outside [0,25] are
// reported as not ok; no index maps to Space.
func LetterAt(index int) (Char, bool) {
	if index < 0 || index >= NumLetters {
		return 0, false
	}
	return Char('A' + index), true
}

// IndexOf returns the class index of a letter, or -1 for anything else.
func IndexOf(c Char) int {
	if c < 'A' || c > 'Z' {
		return -1
	}
	return int(c - 'A')
}

// Valid reports whether c belongs to the alphabet (letters plus space).
func (c Char) Valid() bool {
	return c == Space || (c >= 'A' && c <= 'Z')
}

// String returns the character as a one-rune string.
func (c Char) String() string {
	return string(rune(c))
}

// ParseChar upper-cases r and reports whether it belongs to the alphabet.
func ParseChar(r rune) (Char, bool) {
	c := Char(unicode.ToUpper(r))
	return c, c.Valid()
}

// Alphabet returns the declared alphabet in order: A-Z then space.
func Alphabet() []Char {
	chars := make([]Char, 0, NumLetters+1)
	for i := 0; i < NumLetters; i++ {
		chars = append(chars, Char('A'+i))
	}
	return append(chars, Space)
}

// Join renders a character sequence as a string.
func Join(chars []Char) string {
	runes := make([]rune, len(chars))
	for i, c := range chars {
		runes[i] = rune(c)
	}
	return string(runes)
}

// MarshalText encodes the character as a one-rune string so JSON output
// reads "A" rather than 65.
func (c Char) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts a single letter (any case) or a space.
func (c *Char) UnmarshalText(text []byte) error {
	runes := []rune(string(text))
	if len(runes) != 1 {
		return NewError("domain.char", KindInvalidInput, fmt.Errorf("want one character, got %q", text))
	}
	parsed, ok := ParseChar(runes[0])
	if !ok {
		return NewError("domain.char", KindInvalidInput, fmt.Errorf("%q is not in the alphabet", text))
	}
	*c = parsed
	return nil
}
