package search

import "errors"

var (
	ErrEmptyAlphabet = errors.New("empty alphabet")
	ErrInvalidLength = errors.New("sequence length out of range")
	ErrNoTargets     = errors.New("no target digests")
	ErrInvalidDigest = errors.New("invalid target digest")

	// ErrSearchExhausted means the attempt budget or deadline ran out with
	// digests still pending. It is distinct from success and from caller
	// cancellation.
	ErrSearchExhausted = errors.New("search exhausted")

	// errComplete stops sibling workers once the pending set drains.
	errComplete = errors.New("all digests matched")
)
