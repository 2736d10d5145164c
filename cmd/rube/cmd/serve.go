package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/rube/internal/adapters/web"
	"github.com/corey/rube/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve digest, search, and assemble as a JSON API",
	Long: "Starts a local HTTP API on 127.0.0.1. The default port is derived from\n" +
		"the project path; the bound port is written to .rube/run/http.port.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", -1, "Port to listen on (default: derived from project root, 0 = any)")
}

func runServe(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	cfg, err := app.LoadConfig(configFile(paths))
	if err != nil {
		return err
	}
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	store, err := openStore(paths.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := app.New(cfg, app.WithStore(store), app.WithLogger(logger))
	if err != nil {
		return err
	}

	port := servePort
	if port < 0 {
		port = web.DefaultPort(root)
	}
	srv := web.NewServer(a, paths.PortFile)
	if err := srv.Start(port); err != nil {
		return err
	}
	defer paths.CleanEphemeral()
	logger.Info("api listening", zap.String("url", srv.URL()))
	fmt.Printf("⚡ rube API at %s\n", srv.URL())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-cmd.Context().Done():
	}

	fmt.Println("\n⚡ shutting down...")
	srv.Stop()
	return nil
}
