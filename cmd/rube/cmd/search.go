package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/corey/rube/internal/adapters/digest"
	"github.com/corey/rube/internal/domain/alphabet"
	"github.com/corey/rube/internal/domain/search"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	searchAlphabet    string
	searchLength      int
	searchAlgorithm   string
	searchWorkers     int
	searchMaxAttempts uint64
	searchTimeout     time.Duration
	searchSeed        uint64
)

var searchCmd = &cobra.Command{
	Use:   "search DIGEST...",
	Short: "Find the sequences behind target digests",
	Long: "Draws random sequences of --length runes over --alphabet until every\n" +
		"DIGEST is matched. No config file or cache involved.",
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchAlphabet, "alphabet", "a", "", "Characters to draw from (required)")
	f.IntVarP(&searchLength, "length", "n", 3, "Sequence length in runes")
	f.StringVar(&searchAlgorithm, "algorithm", digest.Default, "Digest algorithm")
	f.IntVar(&searchWorkers, "workers", 1, "Concurrent search workers")
	f.Uint64Var(&searchMaxAttempts, "max-attempts", 0, "Attempt budget (0 = unbounded)")
	f.DurationVar(&searchTimeout, "timeout", 0, "Time budget (0 = none)")
	f.Uint64Var(&searchSeed, "seed", 0, "Seed for reproducible draws (0 = random)")
	searchCmd.MarkFlagRequired("alphabet")
}

func runSearch(cmd *cobra.Command, args []string) error {
	d, err := digest.Lookup(searchAlgorithm)
	if err != nil {
		return err
	}

	opts := []search.Option{
		search.WithWorkers(searchWorkers),
		search.WithMaxAttempts(searchMaxAttempts),
		search.WithLogger(logger),
	}
	if searchSeed != 0 {
		opts = append(opts, search.WithSeed(searchSeed))
	}

	ctx := cmd.Context()
	if searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, searchTimeout)
		defer cancel()
	}

	res, err := search.New(d, opts...).Search(ctx, alphabet.Parse(searchAlphabet), searchLength, args)
	if err != nil {
		return err
	}
	logger.Info("search complete", zap.Uint64("attempts", res.Attempts), zap.Duration("elapsed", res.Elapsed))

	fmt.Fprint(cmd.OutOrStdout(), formatMatches(res.Matches, useColor()))
	return nil
}
