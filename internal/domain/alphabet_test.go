package domain

import (
	"encoding/json"
	"testing"
)

func TestLetterAt(t *testing.T) {
	tests := []struct {
		index int
		want  Char
		ok    bool
	}{
		{0, 'A', true},
		{1, 'B', true},
		{25, 'Z', true},
		{26, 0, false},
		{-1, 0, false},
		{100, 0, false},
	}
	for _, tt := range tests {
		got, ok := LetterAt(tt.index)
		if ok != tt.ok || got != tt.want {
			t.Errorf("LetterAt(%d) = %q, %v; want %q, %v", tt.index, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIndexOf(t *testing.T) {
	for i := 0; i < NumLetters; i++ {
		c, _ := LetterAt(i)
		if got := IndexOf(c); got != i {
			t.Errorf("IndexOf(%q) = %d, want %d", c, got, i)
		}
	}
	if IndexOf(Space) != -1 {
		t.Error("space has no class index")
	}
}

func TestParseChar(t *testing.T) {
	if c, ok := ParseChar('q'); !ok || c != 'Q' {
		t.Errorf("ParseChar('q') = %q, %v", c, ok)
	}
	if c, ok := ParseChar(' '); !ok || c != Space {
		t.Errorf("ParseChar(' ') = %q, %v", c, ok)
	}
	for _, r := range []rune{'1', '!', 'é', '\n'} {
		if _, ok := ParseChar(r); ok {
			t.Errorf("ParseChar(%q) should not be valid", r)
		}
	}
}

func TestAlphabet(t *testing.T) {
	chars := Alphabet()
	if len(chars) != NumLetters+1 {
		t.Fatalf("alphabet length = %d", len(chars))
	}
	if chars[len(chars)-1] != Space {
		t.Error("alphabet should end with space")
	}
	if Join(chars[:3]) != "ABC" {
		t.Errorf("Join = %q", Join(chars[:3]))
	}
}

func TestCharText(t *testing.T) {
	data, err := json.Marshal([]Char{'H', Space, 'I'})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["H"," ","I"]` {
		t.Errorf("Marshal = %s", data)
	}

	var back []Char
	if err := json.Unmarshal([]byte(`["h"," ","I"]`), &back); err != nil {
		t.Fatal(err)
	}
	if Join(back) != "H I" {
		t.Errorf("Unmarshal = %q", Join(back))
	}

	var c Char
	if err := c.UnmarshalText([]byte("7")); !IsKind(err, KindInvalidInput) {
		t.Errorf("digit should be invalid input, got %v", err)
	}
	if err := c.UnmarshalText([]byte("AB")); !IsKind(err, KindInvalidInput) {
		t.Errorf("two runes should be invalid input, got %v", err)
	}
}
