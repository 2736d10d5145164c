package cmd

import (
	"errors"

	"github.com/corey/rube/internal/domain/assemble"
	"github.com/corey/rube/internal/domain/search"
)

// Exit codes beyond the generic 1.
const (
	exitExhausted = 3
	exitChain     = 4
)

// ExitCode maps an error returned by Execute to a process exit code:
// 0 for nil, 3 when a search ran out of attempts or time, 4 when the
// matches could not be chained, and 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, search.ErrSearchExhausted):
		return exitExhausted
	case errors.Is(err, assemble.ErrDisconnectedChain), errors.Is(err, assemble.ErrAmbiguousChain):
		return exitChain
	}
	return 1
}
