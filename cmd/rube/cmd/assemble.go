package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/corey/rube/internal/domain/assemble"
	"github.com/spf13/cobra"
)

var (
	assembleLength int
	assembleStrict bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [SEQ...]",
	Short: "Stitch sequences together by their overlaps",
	Long: "Reassembles sequences that overlap by all but one rune. Sequences come\n" +
		"from the arguments, or one per line on stdin. The first sequence is the\n" +
		"starting point.",
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().IntVarP(&assembleLength, "length", "n", 0, "Sequence length (default: length of the first sequence)")
	assembleCmd.Flags().BoolVar(&assembleStrict, "strict", false, "Fail instead of guessing when a placement is ambiguous")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	seqs := args
	if len(seqs) == 0 && isStdinPipe() {
		var err error
		if seqs, err = readLines(cmd.InOrStdin()); err != nil {
			return err
		}
	}
	if len(seqs) == 0 {
		return assemble.ErrNoSequences
	}

	length := assembleLength
	if length == 0 {
		length = utf8.RuneCountInString(seqs[0])
	}

	var opts []assemble.Option
	if assembleStrict {
		opts = append(opts, assemble.Strict())
	}
	out, err := assemble.Reassemble(seqs, length, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// readLines returns the non-blank lines of r without their line endings.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sequences: %w", err)
	}
	return lines, nil
}
