package cmd

import (
	"fmt"
	"os"

	"github.com/corey/rube/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
	logFile    string
	noColor    bool

	// logger is built in PersistentPreRunE and is never nil inside RunE.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "rube",
	Short: "rube ⚡ recover a hidden string from its n-gram digests",
	Long: "Draws random n-grams over a harvested alphabet until every target digest\n" +
		"is matched, then reassembles the matches by their overlaps.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := app.NewLogger(verbose, logFile)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// configFile returns --config, or .rube/config.yaml under the project root.
func configFile(paths *app.Paths) string {
	if configPath != "" {
		return configPath
	}
	return paths.Config
}

// Execute runs the root command. Errors are printed here so main only has
// to pick the exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default .rube/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	pf.StringVar(&logFile, "log-file", "", "Also write logs to this file")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(alphabetCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}
