// Package gesture classifies a single hand pose as one of the 26 letters of
// the ASL fingerspelling alphabet using fixed geometric rules.
package gesture

import (
	"fmt"
	"strings"
)

// Letter is an uppercase fingerspelling letter, 'A' through 'Z'.
type Letter byte

// None is the zero Letter, reported when a frame is rejected.
const None Letter = 0

// Valid reports whether l is one of A..Z.
func (l Letter) Valid() bool {
	return l >= 'A' && l <= 'Z'
}

func (l Letter) String() string {
	if !l.Valid() {
		return ""
	}
	return string(rune(l))
}

// MarshalText encodes the letter as a one-character string, or "" for None.
func (l Letter) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts "" (None) or a single letter in either case.
func (l *Letter) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*l = None
		return nil
	}
	parsed, err := ParseLetter(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLetter parses a single letter, ignoring case and surrounding space.
func ParseLetter(s string) (Letter, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 || !Letter(s[0]).Valid() {
		return None, fmt.Errorf("invalid letter %q", s)
	}
	return Letter(s[0]), nil
}

// Letters returns A..Z in order.
func Letters() []Letter {
	out := make([]Letter, 0, 26)
	for l := Letter('A'); l <= 'Z'; l++ {
		out = append(out, l)
	}
	return out
}
