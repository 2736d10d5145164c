// Package alphabet models the character set that candidate sequences are
// drawn from. An Alphabet is deduplicated and keeps first-seen order; the
// order carries no meaning but makes seeded searches reproducible.
package alphabet

import (
	"strings"
	"unicode"
)

// Alphabet is an immutable, duplicate-free set of runes.
type Alphabet []rune

// Parse builds an Alphabet from the runes of s, dropping repeats.
func Parse(s string) Alphabet {
	seen := make(map[rune]struct{}, len(s))
	out := make(Alphabet, 0, len(s))
	for _, r := range s {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// FromText harvests an Alphabet from free text. A rune is kept when it is a
// letter, whitespace, or equal to mark (the one designated punctuation
// character). Pass mark = 0 to keep letters and whitespace only.
func FromText(text string, mark rune) Alphabet {
	seen := make(map[rune]struct{})
	var out Alphabet
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && (mark == 0 || r != mark) {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Len returns the number of distinct runes.
func (a Alphabet) Len() int { return len(a) }

// Contains reports whether r is in the alphabet.
func (a Alphabet) Contains(r rune) bool {
	for _, c := range a {
		if c == r {
			return true
		}
	}
	return false
}

// Covers reports whether every rune of seq is in the alphabet.
func (a Alphabet) Covers(seq string) bool {
	for _, r := range seq {
		if !a.Contains(r) {
			return false
		}
	}
	return true
}

func (a Alphabet) String() string {
	var sb strings.Builder
	for _, r := range a {
		sb.WriteRune(r)
	}
	return sb.String()
}
