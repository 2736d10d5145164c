// Package bbolt implements the ports.MatchStore interface using bbolt (embedded B+ tree).
// Matches live under a "matches" bucket with one sub-bucket per digest algorithm,
// keyed by hex digest. Run summaries are JSON values in a "runs" bucket keyed by a
// big-endian sequence number, so the last key is the latest run. Writes are
// transactional: a crash mid-write cannot corrupt previously committed data.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/corey/rube/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketMatches = []byte("matches")
	bucketRuns    = []byte("runs")
)

// Store implements ports.MatchStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.MatchStore = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveMatches records digest -> sequence pairs for an algorithm.
func (s *Store) SaveMatches(algorithm string, matches map[string]string) error {
	if algorithm == "" {
		return fmt.Errorf("empty algorithm")
	}
	if len(matches) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketMatches)
		if err != nil {
			return err
		}
		ab, err := root.CreateBucketIfNotExists([]byte(algorithm))
		if err != nil {
			return err
		}
		for digest, seq := range matches {
			if err := ab.Put([]byte(digest), []byte(seq)); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadMatches returns cached sequences for the requested digests.
func (s *Store) LoadMatches(algorithm string, digests []string) (map[string]string, error) {
	out := make(map[string]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketMatches)
		if root == nil {
			return nil
		}
		ab := root.Bucket([]byte(algorithm))
		if ab == nil {
			return nil
		}
		for _, d := range digests {
			// string() copies; bbolt slices are only valid within tx
			if v := ab.Get([]byte(d)); v != nil {
				out[d] = string(v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveRun appends a run summary.
func (s *Store) SaveRun(rec *ports.RunRecord) error {
	if rec == nil {
		return fmt.Errorf("nil run record")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		rb, err := tx.CreateBucketIfNotExists(bucketRuns)
		if err != nil {
			return err
		}
		seq, err := rb.NextSequence()
		if err != nil {
			return err
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return rb.Put(key[:], data)
	})
}

// LastRun returns the most recent run summary.
// Returns nil, nil if no run has been recorded.
func (s *Store) LastRun() (*ports.RunRecord, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		rb := tx.Bucket(bucketRuns)
		if rb == nil {
			return nil
		}
		_, v := rb.Cursor().Last()
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var rec ports.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &rec, nil
}

// CountMatches returns the number of cached matches per algorithm.
func (s *Store) CountMatches() (map[string]int, error) {
	out := make(map[string]int)
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketMatches)
		if root == nil {
			return nil
		}
		return root.ForEachBucket(func(name []byte) error {
			out[string(name)] = root.Bucket(name).Stats().KeyN
			return nil
		})
	})
	return out, err
}

// Wipe removes all matches and run summaries.
// Idempotent: wiping an empty store is not an error.
func (s *Store) Wipe() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketMatches, bucketRuns} {
			if err := tx.DeleteBucket(b); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}
		return nil
	})
}
