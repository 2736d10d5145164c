package ports

import "context"

// AlphabetSource supplies the character set a search draws from.
// Implementations may hit the network; they must honor ctx cancellation.
type AlphabetSource interface {
	Alphabet(ctx context.Context) (string, error)
}
