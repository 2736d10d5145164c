package cmd

import (
	"fmt"
	"os"

	"github.com/corey/rube/internal/app"
	"github.com/corey/rube/internal/domain/alphabet"
	"github.com/spf13/cobra"
)

var alphabetCmd = &cobra.Command{
	Use:   "alphabet",
	Short: "Harvest and print the alphabet",
	Long: "Builds the alphabet the way run does (letters and whitespace from the\n" +
		"source page plus the designated punctuation mark) and prints it.",
	Args: cobra.NoArgs,
	RunE: runAlphabet,
}

func runAlphabet(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot())
	cfg, err := app.LoadConfig(configFile(paths))
	if err != nil {
		return err
	}
	a, err := app.New(cfg, app.WithLogger(logger))
	if err != nil {
		return err
	}

	s, err := a.Source.Alphabet(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "⚡ %d runes\n", alphabet.Parse(s).Len())
	fmt.Fprintf(cmd.OutOrStdout(), "%q\n", s)
	return nil
}
