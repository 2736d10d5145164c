// Package app wires together all adapters and domain logic.
// It runs the pipeline: harvest alphabet, reuse cached matches, search the
// rest, reassemble, transform, and record the run.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/corey/rube/internal/adapters/digest"
	"github.com/corey/rube/internal/adapters/web"
	"github.com/corey/rube/internal/domain/alphabet"
	"github.com/corey/rube/internal/domain/assemble"
	"github.com/corey/rube/internal/domain/cipher"
	"github.com/corey/rube/internal/domain/search"
	"github.com/corey/rube/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// App is the top-level container wiring all components together.
type App struct {
	Config    Config
	Digester  ports.Digester
	Source    ports.AlphabetSource
	Store     ports.MatchStore // nil disables caching and run history
	Transform cipher.Transform
	Logger    *zap.Logger

	httpClient *http.Client
}

// Option configures an App.
type Option func(*App)

// WithStore attaches a match cache.
func WithStore(s ports.MatchStore) Option {
	return func(a *App) { a.Store = s }
}

// WithSource overrides the alphabet source derived from config.
func WithSource(s ports.AlphabetSource) Option {
	return func(a *App) { a.Source = s }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithHTTPClient sets the client used to harvest documents.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// New validates cfg and builds an App.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := digest.Lookup(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	tr, err := cipher.Lookup(cfg.Transform)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Digester:  d,
		Transform: tr,
		Logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Source == nil {
		a.Source, err = a.defaultSource()
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// StaticSource is an AlphabetSource with a fixed alphabet.
type StaticSource string

func (s StaticSource) Alphabet(context.Context) (string, error) { return string(s), nil }

func (a *App) defaultSource() (ports.AlphabetSource, error) {
	if a.Config.Alphabet != "" {
		return StaticSource(a.Config.Alphabet), nil
	}
	h := &web.Harvester{
		Fetcher:        web.NewFetcher(a.httpClient),
		SourceURL:      a.Config.SourceURL,
		PunctuationURL: a.Config.PunctuationURL,
		Logger:         a.Logger,
	}
	if p := a.Config.Punctuation; p != "" {
		if utf8.RuneCountInString(p) != 1 {
			return nil, fmt.Errorf("%w: punctuation %q must be one character", ErrInvalidConfig, p)
		}
		h.Mark, _ = utf8.DecodeRuneInString(p)
	}
	return h, nil
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	RunID      string
	Alphabet   string
	Sequences  []string
	Assembled  string
	Output     string
	Attempts   uint64
	CachedHits int
	Elapsed    time.Duration
}

// Run executes the full pipeline once.
func (a *App) Run(ctx context.Context) (*Outcome, error) {
	started := time.Now()
	out := &Outcome{RunID: uuid.NewString()}
	log := a.Logger.With(zap.String("run", out.RunID))

	alpha, err := a.Source.Alphabet(ctx)
	if err != nil {
		return nil, fmt.Errorf("alphabet: %w", err)
	}
	out.Alphabet = alpha
	chars := alphabet.Parse(alpha)
	log.Info("alphabet ready", zap.Int("runes", chars.Len()))

	targets, err := search.NormalizeTargets(a.Digester, a.Config.Targets)
	if err != nil {
		return nil, err
	}

	matches, err := a.cached(targets, chars)
	if err != nil {
		return nil, err
	}
	out.CachedHits = len(matches)

	pending := make([]string, 0, len(targets))
	for _, t := range targets {
		if _, ok := matches[t]; !ok {
			pending = append(pending, t)
		}
	}
	log.Info("targets", zap.Int("total", len(targets)), zap.Int("cached", out.CachedHits), zap.Int("pending", len(pending)))

	if len(pending) > 0 {
		res, err := a.SearchAlphabet(ctx, chars, a.Config.NGram, pending, a.Config.Search.MaxAttempts)
		if err != nil {
			return nil, err
		}
		out.Attempts = res.Attempts
		for d, s := range res.Matches {
			matches[d] = s
		}
		if a.cacheEnabled() {
			if err := a.Store.SaveMatches(a.Digester.Name(), res.Matches); err != nil {
				log.Warn("cache write failed", zap.Error(err))
			}
		}
	}

	out.Sequences = (&search.Result{Matches: matches}).Sequences()
	out.Assembled, err = a.Assemble(out.Sequences, a.Config.NGram, a.Config.Assemble.Strict)
	if err != nil {
		return nil, err
	}
	out.Output = a.Transform(out.Assembled)
	out.Elapsed = time.Since(started)

	log.Info("run complete",
		zap.String("assembled", out.Assembled),
		zap.Uint64("attempts", out.Attempts),
		zap.Duration("elapsed", out.Elapsed))

	if a.Store != nil {
		rec := &ports.RunRecord{
			ID:         out.RunID,
			Algorithm:  a.Digester.Name(),
			StartedAt:  started,
			Elapsed:    out.Elapsed,
			Attempts:   out.Attempts,
			Targets:    len(targets),
			CachedHits: out.CachedHits,
			Assembled:  out.Assembled,
			Output:     out.Output,
		}
		if err := a.Store.SaveRun(rec); err != nil {
			log.Warn("run record write failed", zap.Error(err))
		}
	}
	return out, nil
}

func (a *App) cacheEnabled() bool {
	return a.Store != nil && a.Config.Cache
}

// cached returns stored matches that still hold: the digest re-verifies, the
// length is right, and every rune is in the current alphabet.
func (a *App) cached(targets []string, chars alphabet.Alphabet) (map[string]string, error) {
	matches := make(map[string]string, len(targets))
	if !a.cacheEnabled() {
		return matches, nil
	}
	stored, err := a.Store.LoadMatches(a.Digester.Name(), targets)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	for d, s := range stored {
		if search.Digest(a.Digester, s) != d ||
			utf8.RuneCountInString(s) != a.Config.NGram ||
			!chars.Covers(s) {
			a.Logger.Debug("cached match rejected", zap.String("digest", d), zap.String("sequence", s))
			continue
		}
		matches[d] = s
	}
	return matches, nil
}

// SearchAlphabet runs the engine with the configured workers, seed and
// timeout.
func (a *App) SearchAlphabet(ctx context.Context, chars alphabet.Alphabet, length int, targets []string, maxAttempts uint64) (*search.Result, error) {
	sc := a.Config.Search
	opts := []search.Option{
		search.WithWorkers(sc.Workers),
		search.WithMaxAttempts(maxAttempts),
		search.WithLogger(a.Logger),
	}
	if sc.Seed != 0 {
		opts = append(opts, search.WithSeed(sc.Seed))
	}
	if sc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sc.Timeout)
		defer cancel()
	}
	return search.New(a.Digester, opts...).Search(ctx, chars, length, targets)
}

// The methods below let web.Server expose the app.

// Algorithm names the configured digest.
func (a *App) Algorithm() string { return a.Digester.Name() }

// Digest returns the hex digest of text.
func (a *App) Digest(text string) string { return search.Digest(a.Digester, text) }

// Search runs a one-off search over an explicit alphabet.
func (a *App) Search(ctx context.Context, chars string, length int, targets []string, maxAttempts uint64) (*search.Result, error) {
	return a.SearchAlphabet(ctx, alphabet.Parse(chars), length, targets, maxAttempts)
}

// Assemble reassembles seqs, optionally rejecting ambiguous input.
func (a *App) Assemble(seqs []string, length int, strict bool) (string, error) {
	var opts []assemble.Option
	if strict {
		opts = append(opts, assemble.Strict())
	}
	return assemble.Reassemble(seqs, length, opts...)
}

// LastRun returns the latest recorded run, or nil without a store.
func (a *App) LastRun() (*ports.RunRecord, error) {
	if a.Store == nil {
		return nil, nil
	}
	return a.Store.LastRun()
}

var _ web.Queries = (*App)(nil)
