package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/rube/internal/app"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: "Shows the project paths and the resolved configuration. With --init,\n" +
		"writes the defaults to the config file if it does not exist yet.",
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a default config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	cfgPath := configFile(paths)
	w := cmd.OutOrStdout()
	color := useColor()

	if configInit {
		if _, err := os.Stat(cfgPath); err == nil {
			fmt.Fprintf(w, "⚡ %s already exists\n", cfgPath)
			return nil
		}
		if err := paths.EnsureDirs(); err != nil {
			return err
		}
		if err := app.WriteConfig(cfgPath, app.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(w, "⚡ wrote %s\n", cfgPath)
		return nil
	}

	cfg, err := app.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	source := paint(colorGreen, "✓ file", color)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		source = paint(colorYellow, "✗ defaults", color)
	}

	fmt.Fprintf(w, "%s\n", paint(colorBold, "⚡ rube config", color))
	fmt.Fprintf(w, "  Root:       %s\n", root)
	fmt.Fprintf(w, "  Config:     %s (%s)\n", cfgPath, source)
	fmt.Fprintf(w, "  DB:         %s\n", paths.DB)
	if port, err := os.ReadFile(paths.PortFile); err == nil {
		fmt.Fprintf(w, "  API:        http://localhost:%s\n", strings.TrimSpace(string(port)))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, string(data))
	return nil
}
