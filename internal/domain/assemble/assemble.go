// Package assemble stitches fixed-length sequences into one string using
// their (L-1)-rune overlaps.
//
// The input is expected to form a single chain: ordered so each neighbour
// pair overlaps by L-1 runes. Reassemble grows a result from one sequence,
// appending or prepending one rune per placed sequence, and fails instead
// of looping when a whole pass places nothing.
package assemble

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrNoSequences    = errors.New("no sequences to assemble")
	ErrInvalidLength  = errors.New("sequence length must be at least 2")
	ErrSequenceLength = errors.New("sequence has wrong length")

	// ErrDisconnectedChain means a full pass placed nothing while sequences
	// remained: the input holds disjoint fragments or a branch.
	ErrDisconnectedChain = errors.New("sequences do not form one connected chain")

	// ErrAmbiguousChain is returned in strict mode when more than one
	// placement is possible.
	ErrAmbiguousChain = errors.New("sequences do not form a unique chain")
)

type options struct {
	strict bool
}

// Option configures Reassemble.
type Option func(*options)

// Strict rejects ambiguous input instead of applying the suffix-first
// tie-break. A sequence that fits both ends, or two sequences competing for
// the same end, fail with ErrAmbiguousChain.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Reassemble merges seqs, each exactly length runes long, into one string.
//
// The first sequence seeds the result. Each pass scans the remaining
// sequences in order: a sequence whose first length-1 runes equal the
// result's last length-1 runes contributes its final rune to the end;
// otherwise one whose last length-1 runes equal the result's first length-1
// runes contributes its first rune to the front. The end test wins when
// both hold. Placed sequences are dropped after the pass.
//
// For a valid chain of N sequences the result has N+length-1 runes and does
// not depend on input order.
func Reassemble(seqs []string, length int, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(seqs) == 0 {
		return "", ErrNoSequences
	}
	if length < 2 {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	runes := make([][]rune, len(seqs))
	for i, s := range seqs {
		r := []rune(s)
		if len(r) != length {
			return "", fmt.Errorf("%w: %q has %d runes, want %d", ErrSequenceLength, s, len(r), length)
		}
		runes[i] = r
	}

	k := length - 1
	result := append([]rune(nil), runes[0]...)
	remaining := runes[1:]

	for len(remaining) > 0 {
		placed := make([]bool, len(remaining))
		progress := 0

		for i, seq := range remaining {
			atEnd := slices.Equal(seq[:k], result[len(result)-k:])
			atFront := slices.Equal(seq[1:], result[:k])

			if o.strict && (atEnd || atFront) {
				if err := checkUnique(seq, atEnd, atFront, result, remaining, placed, k); err != nil {
					return "", err
				}
			}

			switch {
			case atEnd:
				result = append(result, seq[k])
			case atFront:
				result = append([]rune{seq[0]}, result...)
			default:
				continue
			}
			placed[i] = true
			progress++
		}

		if progress == 0 {
			return "", fmt.Errorf("%w: %d sequences unplaced: %s",
				ErrDisconnectedChain, len(remaining), joinRunes(remaining))
		}

		next := remaining[:0:0]
		for i, seq := range remaining {
			if !placed[i] {
				next = append(next, seq)
			}
		}
		remaining = next
	}

	return string(result), nil
}

// checkUnique fails when seq fits both ends of result, or when another
// still-unplaced sequence fits the same end.
func checkUnique(seq []rune, atEnd, atFront bool, result []rune, remaining [][]rune, placed []bool, k int) error {
	if atEnd && atFront {
		return fmt.Errorf("%w: %q extends both ends of %q", ErrAmbiguousChain, string(seq), string(result))
	}
	for j, other := range remaining {
		if placed[j] || slices.Equal(other, seq) {
			continue
		}
		if atEnd && slices.Equal(other[:k], result[len(result)-k:]) {
			return fmt.Errorf("%w: %q and %q both follow %q", ErrAmbiguousChain, string(seq), string(other), string(result))
		}
		if atFront && slices.Equal(other[1:], result[:k]) {
			return fmt.Errorf("%w: %q and %q both precede %q", ErrAmbiguousChain, string(seq), string(other), string(result))
		}
	}
	return nil
}

// Chain splits s into its overlapping windows of length runes, in order.
// It returns nil when s is shorter than length.
func Chain(s string, length int) []string {
	r := []rune(s)
	if length < 1 || len(r) < length {
		return nil
	}
	out := make([]string, 0, len(r)-length+1)
	for i := 0; i+length <= len(r); i++ {
		out = append(out, string(r[i:i+length]))
	}
	return out
}

func joinRunes(seqs [][]rune) string {
	parts := make([]string, len(seqs))
	for i, s := range seqs {
		parts[i] = fmt.Sprintf("%q", string(s))
	}
	return strings.Join(parts, ", ")
}
