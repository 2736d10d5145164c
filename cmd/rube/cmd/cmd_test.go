package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/corey/rube/internal/app"
	"github.com/corey/rube/internal/domain/assemble"
	"github.com/corey/rube/internal/domain/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	berrors "go.etcd.io/bbolt/errors"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		assembleLength, assembleStrict = 0, false
		digestAlgorithm, digestChain, digestList = "sha256", 0, false
		noColor = false
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--no-color"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

// =============================================================================
// Exit codes
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"generic", fmt.Errorf("boom"), 1},
		{"exhausted", fmt.Errorf("run: %w", search.ErrSearchExhausted), 3},
		{"disconnected", assemble.ErrDisconnectedChain, 4},
		{"ambiguous", fmt.Errorf("x: %w", assemble.ErrAmbiguousChain), 4},
		{"bad input", assemble.ErrInvalidLength, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

// =============================================================================
// assemble / digest commands
// =============================================================================

func TestAssembleCommand_Args(t *testing.T) {
	out, err := execute(t, "", "assemble", "tex", "cat", "ate")
	require.NoError(t, err)
	assert.Equal(t, "catex\n", out)
}

func TestAssembleCommand_Disconnected(t *testing.T) {
	_, err := execute(t, "", "assemble", "thx", "hey", "eyc")
	require.Error(t, err)
	assert.Equal(t, exitChain, ExitCode(err))
}

func TestAssembleCommand_StrictTie(t *testing.T) {
	_, err := execute(t, "", "assemble", "--strict", "aba", "bab")
	assert.ErrorIs(t, err, assemble.ErrAmbiguousChain)
}

func TestAssembleCommand_LengthMismatch(t *testing.T) {
	_, err := execute(t, "", "assemble", "--length", "2", "cat", "ate")
	assert.ErrorIs(t, err, assemble.ErrSequenceLength)
}

func TestDigestCommand(t *testing.T) {
	out, err := execute(t, "", "digest", "abc")
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad  abc\n", out)
}

func TestDigestCommand_Chain(t *testing.T) {
	out, err := execute(t, "", "digest", "--chain", "3", "catex")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "  cat"))
	assert.True(t, strings.HasSuffix(lines[2], "  tex"))
}

func TestDigestCommand_TooShort(t *testing.T) {
	_, err := execute(t, "", "digest", "--chain", "4", "cat")
	assert.Error(t, err)
}

func TestDigestCommand_UnknownAlgorithm(t *testing.T) {
	_, err := execute(t, "", "digest", "--algorithm", "crc32", "abc")
	assert.Error(t, err)
}

func TestDigestCommand_List(t *testing.T) {
	out, err := execute(t, "", "digest", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "sha256")
	assert.Contains(t, out, "blake2b-256")
}

// =============================================================================
// helpers
// =============================================================================

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("cat\r\n\nate\n  \ntex"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "ate", "tex"}, lines)
}

func TestFormatOutcome(t *testing.T) {
	out := formatOutcome(&app.Outcome{
		Sequences:  []string{"ate", "cat", "tex"},
		Assembled:  "catex",
		Output:     "pngrk",
		Attempts:   42,
		CachedHits: 1,
		Elapsed:    1500 * time.Microsecond,
	}, false)
	assert.Equal(t, "⚡ catex │ 3 sequences (1 cached) │ 42 attempts │ 1.5ms\n  ate  cat  tex\npngrk\n", out)
}

func TestFormatMatches_SortedBySequence(t *testing.T) {
	out := formatMatches(map[string]string{"d2": "zz", "d1": "aa"}, false)
	assert.Equal(t, "d1  aa\nd2  zz\n", out)
}

func TestIsDBLockError(t *testing.T) {
	assert.False(t, isDBLockError(nil))
	assert.True(t, isDBLockError(fmt.Errorf("bbolt open: %w", berrors.ErrTimeout)))
	assert.False(t, isDBLockError(fmt.Errorf("dial tcp: i/o timeout")), "matched by identity, not text")
	assert.False(t, isDBLockError(fmt.Errorf("permission denied")))
}

func TestOpenStore_Locked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rube.db")
	held, err := openStore(path)
	require.NoError(t, err)
	defer held.Close()

	_, err = openStore(path)
	require.Error(t, err)
	assert.True(t, isDBLockError(err))
	assert.Contains(t, err.Error(), "another rube process holds")
}
