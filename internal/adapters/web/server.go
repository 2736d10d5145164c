package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/rube/internal/domain/assemble"
	"github.com/corey/rube/internal/domain/search"
	"github.com/corey/rube/internal/ports"
)

// MaxServedAttempts caps the draws one API search may spend.
const MaxServedAttempts = 10_000_000

// Queries is the slice of the app the server exposes.
type Queries interface {
	Algorithm() string
	Digest(text string) string
	Search(ctx context.Context, alphabet string, length int, targets []string, maxAttempts uint64) (*search.Result, error)
	Assemble(seqs []string, length int, strict bool) (string, error)
	LastRun() (*ports.RunRecord, error)
}

// Server serves the engine as a JSON API over HTTP.
type Server struct {
	queries  Queries
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // .rube/run/http.port
}

// NewServer creates an API server. The portFilePath is where the bound port
// is written for discovery; empty disables it.
func NewServer(queries Queries, portFilePath string) *Server {
	return &Server{
		queries:      queries,
		portFilePath: portFilePath,
	}
}

// DefaultPort computes a project-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/runs/last", s.handleLastRun)
	mux.HandleFunc("POST /api/digest", s.handleDigest)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/assemble", s.handleAssemble)
	return mux
}

// Start begins listening on the preferred port and writes the port file.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()
	s.httpSrv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	if s.portFilePath != "" {
		os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644)
	}

	go s.httpSrv.Serve(ln)
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the API base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// HealthResult is the body of GET /api/health.
type HealthResult struct {
	Status    string `json:"status"`
	Algorithm string `json:"algorithm"`
	Uptime    string `json:"uptime"`
}

// DigestRequest asks for the digests of texts, or of every Chain-length
// window of each text when Chain > 0.
type DigestRequest struct {
	Texts []string `json:"texts"`
	Chain int      `json:"chain,omitempty"`
}

// DigestEntry pairs a text with its digest.
type DigestEntry struct {
	Text   string `json:"text"`
	Digest string `json:"digest"`
}

type DigestResult struct {
	Algorithm string        `json:"algorithm"`
	Digests   []DigestEntry `json:"digests"`
}

type SearchRequest struct {
	Alphabet    string   `json:"alphabet"`
	Length      int      `json:"length"`
	Targets     []string `json:"targets"`
	MaxAttempts uint64   `json:"max_attempts,omitempty"`
}

type SearchResult struct {
	Matches   map[string]string `json:"matches"`
	Sequences []string          `json:"sequences"`
	Attempts  uint64            `json:"attempts"`
	Elapsed   string            `json:"elapsed"`
}

type AssembleRequest struct {
	Sequences []string `json:"sequences"`
	Length    int      `json:"length"`
	Strict    bool     `json:"strict,omitempty"`
}

type AssembleResult struct {
	Assembled string `json:"assembled"`
}

type errorResult struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResult{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrSearchExhausted),
		errors.Is(err, assemble.ErrDisconnectedChain),
		errors.Is(err, assemble.ErrAmbiguousChain):
		return http.StatusUnprocessableEntity
	case errors.Is(err, search.ErrEmptyAlphabet),
		errors.Is(err, search.ErrInvalidLength),
		errors.Is(err, search.ErrNoTargets),
		errors.Is(err, search.ErrInvalidDigest),
		errors.Is(err, assemble.ErrNoSequences),
		errors.Is(err, assemble.ErrInvalidLength),
		errors.Is(err, assemble.ErrSequenceLength):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResult{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResult{
		Status:    "ok",
		Algorithm: s.queries.Algorithm(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.queries.LastRun()
	if err != nil {
		writeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, errorResult{Error: "no runs recorded"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	var req DigestRequest
	if !decode(w, r, &req) {
		return
	}
	var entries []DigestEntry
	for _, text := range req.Texts {
		items := []string{text}
		if req.Chain > 0 {
			items = assemble.Chain(text, req.Chain)
		}
		for _, it := range items {
			entries = append(entries, DigestEntry{Text: it, Digest: s.queries.Digest(it)})
		}
	}
	writeJSON(w, http.StatusOK, DigestResult{Algorithm: s.queries.Algorithm(), Digests: entries})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}
	if req.MaxAttempts == 0 || req.MaxAttempts > MaxServedAttempts {
		req.MaxAttempts = MaxServedAttempts
	}
	res, err := s.queries.Search(r.Context(), req.Alphabet, req.Length, req.Targets, req.MaxAttempts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResult{
		Matches:   res.Matches,
		Sequences: res.Sequences(),
		Attempts:  res.Attempts,
		Elapsed:   res.Elapsed.String(),
	})
}

func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	var req AssembleRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := s.queries.Assemble(req.Sequences, req.Length, req.Strict)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AssembleResult{Assembled: out})
}
