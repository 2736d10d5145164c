// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "time"

// MatchStore persists discovered digest→sequence pairs and run summaries.
// The backing store (bbolt) namespaces matches by digest algorithm, so a
// sha256 match never satisfies an md5 lookup. Concurrent reads are safe;
// writes are serialized by the adapter.
//
// Crash safety: SaveMatches and SaveRun must be transactional.
type MatchStore interface {
	// SaveMatches records matches for an algorithm. Existing entries for the
	// same digest are overwritten.
	SaveMatches(algorithm string, matches map[string]string) error

	// LoadMatches returns the cached sequences for the requested digests.
	// Digests with no cached entry are absent from the result.
	LoadMatches(algorithm string, digests []string) (map[string]string, error)

	// SaveRun appends a run summary.
	SaveRun(rec *RunRecord) error

	// LastRun returns the most recent run summary.
	// Returns nil, nil if nothing has been recorded.
	LastRun() (*RunRecord, error)

	// Wipe removes all matches and run summaries.
	// Idempotent: wiping an empty store is not an error.
	Wipe() error
}

// RunRecord summarizes one pipeline run.
type RunRecord struct {
	ID         string        `json:"id"`
	Algorithm  string        `json:"algorithm"`
	StartedAt  time.Time     `json:"started_at"`
	Elapsed    time.Duration `json:"elapsed"`
	Attempts   uint64        `json:"attempts"`
	Targets    int           `json:"targets"`
	CachedHits int           `json:"cached_hits"`
	Assembled  string        `json:"assembled"`
	Output     string        `json:"output"`
}
