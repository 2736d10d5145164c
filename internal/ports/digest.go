package ports

// Digester is a deterministic one-way function with a fixed output size.
// Producer and consumer of target digests must agree on the same Digester.
type Digester interface {
	// Name is the registry name, e.g. "sha256".
	Name() string

	// Size is the digest length in bytes.
	Size() int

	// Sum returns the digest of p. Implementations must be safe for
	// concurrent use.
	Sum(p []byte) []byte
}
