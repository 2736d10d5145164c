package bbolt

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/rube/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Match cache
// Expectation: matches survive restarts and never leak across algorithms.
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

// makeTestMatches returns digest -> trigram pairs; digests are placeholders.
func makeTestMatches() map[string]string {
	return map[string]string{
		"d-cat": "cat",
		"d-ate": "ate",
		"d-tex": "tex",
	}
}

func TestStore_SaveLoadMatches_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveMatches("sha256", makeTestMatches()))

	got, err := store.LoadMatches("sha256", []string{"d-cat", "d-tex", "d-missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"d-cat": "cat", "d-tex": "tex"}, got)
}

func TestStore_LoadMatches_Empty(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.LoadMatches("sha256", []string{"d-cat"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_AlgorithmScoped(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveMatches("sha256", makeTestMatches()))

	got, err := store.LoadMatches("md5", []string{"d-cat"})
	require.NoError(t, err)
	assert.Empty(t, got, "sha256 matches must not satisfy md5 lookups")

	counts, err := store.CountMatches()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"sha256": 3}, counts)
}

func TestStore_SaveMatches_Overwrites(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveMatches("sha256", map[string]string{"d": "old"}))
	require.NoError(t, store.SaveMatches("sha256", map[string]string{"d": "new"}))

	got, err := store.LoadMatches("sha256", []string{"d"})
	require.NoError(t, err)
	assert.Equal(t, "new", got["d"])
}

func TestStore_SaveMatches_Validation(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveMatches("", makeTestMatches()))
	assert.NoError(t, store.SaveMatches("sha256", nil), "nothing to save is not an error")
}

func TestStore_Runs(t *testing.T) {
	store, _ := newTestStore(t)

	last, err := store.LastRun()
	require.NoError(t, err)
	assert.Nil(t, last, "fresh store has no runs")

	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		require.NoError(t, store.SaveRun(&ports.RunRecord{
			ID:        fmt.Sprintf("run-%d", i),
			Algorithm: "sha256",
			StartedAt: started.Add(time.Duration(i) * time.Minute),
			Attempts:  uint64(i * 100),
			Assembled: "catex",
		}))
	}

	last, err = store.LastRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "run-3", last.ID)
	assert.Equal(t, uint64(300), last.Attempts)
	assert.True(t, last.StartedAt.Equal(started.Add(3*time.Minute)))

	assert.Error(t, store.SaveRun(nil))
}

func TestStore_Wipe(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Wipe(), "wiping an empty store is not an error")

	require.NoError(t, store.SaveMatches("sha256", makeTestMatches()))
	require.NoError(t, store.SaveRun(&ports.RunRecord{ID: "r"}))
	require.NoError(t, store.Wipe())

	got, err := store.LoadMatches("sha256", []string{"d-cat"})
	require.NoError(t, err)
	assert.Empty(t, got)
	last, err := store.LastRun()
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, store.Wipe(), "idempotent")
}

func TestStore_StateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restart.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveMatches("sha256", makeTestMatches()))
	require.NoError(t, store.SaveRun(&ports.RunRecord{ID: "before"}))
	require.NoError(t, store.Close())

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.LoadMatches("sha256", []string{"d-ate"})
	require.NoError(t, err)
	assert.Equal(t, "ate", got["d-ate"])

	last, err := store2.LastRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "before", last.ID)
}

func TestStore_ConcurrentReads(t *testing.T) {
	// bbolt supports concurrent readers, single writer.
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveMatches("sha256", makeTestMatches()))

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.LoadMatches("sha256", []string{"d-cat", "d-ate", "d-tex"})
			if err != nil {
				errs <- err
				return
			}
			if len(got) != 3 {
				errs <- fmt.Errorf("expected 3 matches, got %d", len(got))
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read error: %v", err)
	}
}

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	// When another holder has the bbolt exclusive lock, a second open
	// should time out in ~1 second, not hang forever.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2, "store should be nil on timeout")
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
}
