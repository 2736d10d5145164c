// Package cipher holds the reversible letter substitutions applied to an
// assembled string before it is displayed.
package cipher

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTransform = errors.New("unknown transform")

// Transform maps an assembled string to its display form.
type Transform func(string) string

// Rot13 rotates ASCII letters by 13 places. Other runes pass through.
// Applying it twice returns the input.
func Rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}, s)
}

func identity(s string) string { return s }

// Lookup returns the named transform: "rot13" or "none" ("" means none).
func Lookup(name string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rot13":
		return Rot13, nil
	case "", "none":
		return identity, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
}
