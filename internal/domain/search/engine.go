// Package search finds fixed-length sequences over an alphabet whose digest
// matches one of a known set of target digests.
//
// The search is randomized: each attempt draws L runes uniformly with
// replacement, digests the UTF-8 bytes, and retires the digest if it is still
// pending. It ends when nothing is pending, when the attempt budget runs out,
// or when the context is done.
package search

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/corey/rube/internal/domain/alphabet"
	"github.com/corey/rube/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxLength bounds the sequence length a search accepts.
const MaxLength = 1024

// Engine runs digest searches with a fixed digester and options.
type Engine struct {
	digester    ports.Digester
	workers     int
	maxAttempts uint64
	seed        uint64
	seeded      bool
	logger      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes draws reproducible. Worker i uses PCG(seed, i), so a seeded
// single-worker search is fully deterministic.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}

// WithMaxAttempts caps the total number of draws across all workers.
// Zero means unbounded.
func WithMaxAttempts(n uint64) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// WithWorkers sets the number of concurrent draw loops. Values below 1 are
// treated as 1.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithLogger attaches a logger. Matches are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine using d to fingerprint candidates.
func New(d ports.Digester, opts ...Option) *Engine {
	e := &Engine{
		digester: d,
		workers:  1,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of a completed search.
type Result struct {
	Matches  map[string]string // digest -> sequence
	Attempts uint64
	Elapsed  time.Duration
}

// Sequences returns the matched sequences in lexical order. Discovery order
// is not meaningful, so a stable order is the useful one.
func (r *Result) Sequences() []string {
	out := make([]string, 0, len(r.Matches))
	for _, s := range r.Matches {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Digest returns the lower-case hex digest of s's UTF-8 bytes.
func Digest(d ports.Digester, s string) string {
	return hex.EncodeToString(d.Sum([]byte(s)))
}

// NormalizeTargets trims, lower-cases and deduplicates hex digests, and
// checks each decodes to d.Size() bytes.
func NormalizeTargets(d ports.Digester, targets []string) ([]string, error) {
	seen := make(map[string]struct{}, len(targets))
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		raw, err := hex.DecodeString(t)
		if err != nil || len(raw) != d.Size() {
			return nil, fmt.Errorf("%w: %q is not a %d-byte %s digest", ErrInvalidDigest, t, d.Size(), d.Name())
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, ErrNoTargets
	}
	return out, nil
}

// Search draws length-rune candidates from alpha until every target digest
// has been matched by exactly one candidate.
//
// On success every target maps to a sequence whose digest equals it. If the
// attempt budget runs out, or ctx's deadline passes, the error wraps
// ErrSearchExhausted. Plain cancellation returns the context error.
func (e *Engine) Search(ctx context.Context, alpha alphabet.Alphabet, length int, targets []string) (*Result, error) {
	if alpha.Len() == 0 {
		return nil, ErrEmptyAlphabet
	}
	if length < 1 || length > MaxLength {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidLength, length, MaxLength)
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	want, err := NormalizeTargets(e.digester, targets)
	if err != nil {
		return nil, err
	}

	pending := newPendingSet(want)
	start := time.Now()
	var attempts atomic.Uint64

	e.logger.Debug("search started",
		zap.String("algorithm", e.digester.Name()),
		zap.Int("alphabet", alpha.Len()),
		zap.Int("length", length),
		zap.Int("targets", len(want)),
		zap.Int("workers", e.workers))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < e.workers; i++ {
		rng := e.rng(uint64(i))
		g.Go(func() error {
			return e.draw(gctx, rng, alpha, length, pending, &attempts)
		})
	}
	werr := g.Wait()

	res := &Result{
		Matches:  pending.matches(),
		Attempts: attempts.Load(),
		Elapsed:  time.Since(start),
	}
	left := pending.remaining()
	if left == 0 {
		e.logger.Info("search complete",
			zap.Int("matched", len(res.Matches)),
			zap.Uint64("attempts", res.Attempts),
			zap.Duration("elapsed", res.Elapsed))
		return res, nil
	}

	switch {
	case errors.Is(werr, ErrSearchExhausted):
		return nil, fmt.Errorf("%w after %d attempts: %d of %d digests unmatched",
			ErrSearchExhausted, res.Attempts, left, len(want))
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w after %d attempts: %d of %d digests unmatched: %w",
			ErrSearchExhausted, res.Attempts, left, len(want), ctx.Err())
	case ctx.Err() != nil:
		return nil, fmt.Errorf("search cancelled: %w", ctx.Err())
	case werr != nil:
		return nil, werr
	}
	return nil, fmt.Errorf("search stopped with %d digests unmatched", left)
}

func (e *Engine) rng(stream uint64) *rand.Rand {
	if e.seeded {
		return rand.New(rand.NewPCG(e.seed, stream))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// draw is one worker's loop. It returns errComplete when it retires the last
// pending digest, ErrSearchExhausted when the shared budget runs out, and nil
// when ctx is done.
func (e *Engine) draw(ctx context.Context, rng *rand.Rand, alpha alphabet.Alphabet, length int, pending *pendingSet, attempts *atomic.Uint64) error {
	buf := make([]rune, length)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n := attempts.Add(1)
		if e.maxAttempts > 0 && n > e.maxAttempts {
			attempts.Add(^uint64(0))
			return ErrSearchExhausted
		}

		for i := range buf {
			buf[i] = alpha[rng.IntN(len(alpha))]
		}
		seq := string(buf)
		digest := Digest(e.digester, seq)

		ok, left := pending.claim(digest, seq)
		if !ok {
			continue
		}
		e.logger.Debug("digest matched",
			zap.String("digest", digest),
			zap.String("sequence", seq),
			zap.Uint64("attempt", n),
			zap.Int("pending", left))
		if left == 0 {
			return errComplete
		}
	}
}
