package translate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/bemysenses/internal/domain"
)

// SpaceFile is the image used for the space character.
const SpaceFile = "space.png"

// Table maps alphabet characters to image file names relative to the asset directory.
type Table map[domain.Char]string

// DefaultTable returns the stock asset names: a_1-19.png through z_1-19.png plus space.png.
func DefaultTable() Table {
	t := make(Table, domain.NumLetters+1)
	for i := 0; i < domain.NumLetters; i++ {
		letter, _ := domain.LetterAt(i)
		t[letter] = fmt.Sprintf("%c_1-19.png", 'a'+i)
	}
	t[domain.Space] = SpaceFile
	return t
}

// Lookup returns the file for c. Lower-case letters are folded first.
func (t Table) Lookup(r rune) (domain.Char, string, bool) {
	c, ok := domain.ParseChar(r)
	if !ok {
		return c, "", false
	}
	file, ok := t[c]
	return c, file, ok
}

// withSpace returns t with the space mapping filled in when missing.
func (t Table) withSpace() Table {
	if _, ok := t[domain.Space]; ok {
		return t
	}
	out := make(Table, len(t)+1)
	for c, f := range t {
		out[c] = f
	}
	out[domain.Space] = SpaceFile
	return out
}

// tableFile is the on-disk form of a table:
//
//	assets:
//	  A: a_1-19.png
//	  space: space.png
type tableFile struct {
	Assets map[string]string `yaml:"assets"`
}

// LoadTable reads a YAML asset table. Keys are single letters (any case),
// "space", or a literal " ".
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML asset table.
func ParseTable(data []byte) (Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, domain.NewError("translate.table", domain.KindInvalidInput, err)
	}

	t := make(Table, len(f.Assets))
	for key, file := range f.Assets {
		if file == "" {
			return nil, domain.NewError("translate.table", domain.KindInvalidInput,
				fmt.Errorf("empty file for key %q", key))
		}

		if strings.EqualFold(key, "space") || key == " " {
			t[domain.Space] = file
			continue
		}

		var c domain.Char
		if err := c.UnmarshalText([]byte(key)); err != nil {
			return nil, domain.NewError("translate.table", domain.KindInvalidInput,
				fmt.Errorf("bad key %q", key))
		}
		t[c] = file
	}
	return t, nil
}
