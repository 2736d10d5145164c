package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/rube/internal/adapters/digest"
	"github.com/corey/rube/internal/domain/assemble"
	"github.com/corey/rube/internal/domain/search"
	"github.com/spf13/cobra"
)

var (
	digestAlgorithm string
	digestChain     int
	digestList      bool
)

var digestCmd = &cobra.Command{
	Use:   "digest TEXT...",
	Short: "Print digests of texts or of their n-grams",
	Long: "Prints the hex digest of each TEXT. With --chain L, prints the digest of\n" +
		"every L-rune window instead, which is how a set of targets is made.",
	RunE: runDigest,
}

func init() {
	f := digestCmd.Flags()
	f.StringVar(&digestAlgorithm, "algorithm", digest.Default, "Digest algorithm")
	f.IntVar(&digestChain, "chain", 0, "Digest every window of this many runes")
	f.BoolVar(&digestList, "list", false, "List supported algorithms")
}

func runDigest(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if digestList {
		fmt.Fprintln(w, strings.Join(digest.Names(), "\n"))
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("digest: at least one TEXT required")
	}

	d, err := digest.Lookup(digestAlgorithm)
	if err != nil {
		return err
	}

	color := useColor()
	for _, text := range args {
		items := []string{text}
		if digestChain > 0 {
			if items = assemble.Chain(text, digestChain); len(items) == 0 {
				return fmt.Errorf("digest: %q is shorter than %d runes", text, digestChain)
			}
		}
		for _, s := range items {
			fmt.Fprintf(w, "%s  %s\n", paint(colorCyan, search.Digest(d, s), color), s)
		}
	}
	return nil
}
