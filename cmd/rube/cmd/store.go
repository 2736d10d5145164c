package cmd

import (
	"errors"
	"fmt"

	"github.com/corey/rube/internal/adapters/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

// openStore opens the match cache, with guidance when another process holds
// the file lock.
func openStore(path string) (*bbolt.Store, error) {
	store, err := bbolt.NewStore(path)
	if err == nil {
		return store, nil
	}
	if isDBLockError(err) {
		return nil, fmt.Errorf("%w\n  → another rube process holds %s\n  → retry when it exits", err, path)
	}
	return nil, fmt.Errorf("open store: %w", err)
}

// isDBLockError reports whether err is bbolt giving up on the file lock
// within the open timeout.
func isDBLockError(err error) bool {
	return errors.Is(err, berrors.ErrTimeout)
}
