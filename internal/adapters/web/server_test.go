package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corey/rube/internal/adapters/digest"
	"github.com/corey/rube/internal/domain/alphabet"
	"github.com/corey/rube/internal/domain/assemble"
	"github.com/corey/rube/internal/domain/search"
	"github.com/corey/rube/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueries implements Queries over the real domain packages.
type fakeQueries struct {
	d    ports.Digester
	last *ports.RunRecord
}

func (f *fakeQueries) Algorithm() string         { return f.d.Name() }
func (f *fakeQueries) Digest(text string) string { return search.Digest(f.d, text) }

func (f *fakeQueries) Search(ctx context.Context, alpha string, length int, targets []string, maxAttempts uint64) (*search.Result, error) {
	return search.New(f.d, search.WithSeed(1), search.WithMaxAttempts(maxAttempts)).
		Search(ctx, alphabet.Parse(alpha), length, targets)
}

func (f *fakeQueries) Assemble(seqs []string, length int, strict bool) (string, error) {
	if strict {
		return assemble.Reassemble(seqs, length, assemble.Strict())
	}
	return assemble.Reassemble(seqs, length)
}

func (f *fakeQueries) LastRun() (*ports.RunRecord, error) { return f.last, nil }

func setupTestServer(t *testing.T, last *ports.RunRecord) (*httptest.Server, *fakeQueries) {
	t.Helper()
	d, err := digest.Lookup("sha256")
	require.NoError(t, err)
	q := &fakeQueries{d: d, last: last}
	ts := httptest.NewServer(NewServer(q, "").Handler())
	t.Cleanup(ts.Close)
	return ts, q
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var result HealthResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "sha256", result.Algorithm)
}

func TestDigestEndpoint_Chain(t *testing.T) {
	ts, q := setupTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/digest", DigestRequest{Texts: []string{"catex"}, Chain: 3})
	require.Equal(t, 200, resp.StatusCode)

	var result DigestResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Digests, 3)
	assert.Equal(t, "cat", result.Digests[0].Text)
	assert.Equal(t, q.Digest("tex"), result.Digests[2].Digest)
}

func TestSearchEndpoint(t *testing.T) {
	ts, q := setupTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/search", SearchRequest{
		Alphabet: "abc",
		Length:   3,
		Targets:  []string{q.Digest("cab")},
	})
	require.Equal(t, 200, resp.StatusCode)

	var result SearchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"cab"}, result.Sequences)
}

func TestSearchEndpoint_Exhausted(t *testing.T) {
	ts, q := setupTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/search", SearchRequest{
		Alphabet:    "ab",
		Length:      3,
		Targets:     []string{q.Digest("zzz")},
		MaxAttempts: 100,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSearchEndpoint_BadInput(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/search", SearchRequest{Alphabet: "ab", Length: 3, Targets: []string{"zz"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/search", map[string]any{"unknown": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchEndpoint_LengthTooLarge(t *testing.T) {
	ts, q := setupTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/search", map[string]any{
		"alphabet": "ab",
		"length":   int64(1) << 47,
		"targets":  []string{q.Digest("ab")},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var result errorResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Contains(t, result.Error, search.ErrInvalidLength.Error())

	// The server is still up.
	health, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, 200, health.StatusCode)
}

func TestAssembleEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/assemble", AssembleRequest{Sequences: []string{"tex", "cat", "ate"}, Length: 3})
	require.Equal(t, 200, resp.StatusCode)
	var result AssembleResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "catex", result.Assembled)

	resp = postJSON(t, ts.URL+"/api/assemble", AssembleRequest{Sequences: []string{"thx", "hey", "eyc"}, Length: 3})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLastRunEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/runs/last")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	ts, _ = setupTestServer(t, &ports.RunRecord{ID: "r1", Assembled: "catex"})
	resp, err = http.Get(ts.URL + "/api/runs/last")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var rec ports.RunRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "r1", rec.ID)
}

func TestServer_StartStop(t *testing.T) {
	d, _ := digest.Lookup("sha256")
	portFile := t.TempDir() + "/http.port"
	srv := NewServer(&fakeQueries{d: d}, portFile)
	require.NoError(t, srv.Start(0))
	assert.NotZero(t, srv.Port())
	assert.FileExists(t, portFile)

	srv.Stop()
	srv.Stop()
	assert.NoFileExists(t, portFile)
}

func TestDefaultPort_Range(t *testing.T) {
	p := DefaultPort("/tmp/project")
	assert.GreaterOrEqual(t, p, 19000)
	assert.Less(t, p, 20000)
	assert.Equal(t, p, DefaultPort("/tmp/project"))
}
