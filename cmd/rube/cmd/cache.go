package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/corey/rube/internal/app"
	"github.com/spf13/cobra"
)

var (
	cacheWipe  bool
	cacheForce bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show or wipe cached matches and run history",
	Args:  cobra.NoArgs,
	RunE:  runCache,
}

func init() {
	cacheCmd.Flags().BoolVar(&cacheWipe, "wipe", false, "Delete all cached matches and run history")
	cacheCmd.Flags().BoolVar(&cacheForce, "force", false, "Skip confirmation prompt")
}

func runCache(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot())
	w := cmd.OutOrStdout()

	if _, err := os.Stat(paths.DB); os.IsNotExist(err) {
		fmt.Fprintln(w, "⚡ no cache")
		return nil
	}

	store, err := openStore(paths.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	if cacheWipe {
		if !cacheForce && !confirm(cmd, "⚠ This will delete all cached matches and runs. Continue? [y/N] ") {
			fmt.Fprintln(w, "cancelled")
			return nil
		}
		if err := store.Wipe(); err != nil {
			return err
		}
		fmt.Fprintln(w, "⚡ cache wiped")
		return nil
	}

	counts, err := store.CountMatches()
	if err != nil {
		return err
	}
	last, err := store.LastRun()
	if err != nil {
		return err
	}

	color := useColor()
	fmt.Fprintf(w, "%s\n", paint(colorBold, "⚡ rube cache", color))
	fmt.Fprintf(w, "  DB:         %s\n", paths.DB)
	algos := make([]string, 0, len(counts))
	for name := range counts {
		algos = append(algos, name)
	}
	sort.Strings(algos)
	if len(algos) == 0 {
		fmt.Fprintln(w, "  Matches:    0")
	}
	for _, name := range algos {
		fmt.Fprintf(w, "  Matches:    %d %s\n", counts[name], paint(colorGray, name, color))
	}
	fmt.Fprint(w, formatRun(last, color))
	return nil
}

// confirm asks a yes/no question on stdin.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
