package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .rube/ project directory.
type Paths struct {
	Root   string // .rube/
	DB     string // .rube/rube.db
	Config string // .rube/config.yaml

	RunDir   string // .rube/run/
	PortFile string // .rube/run/http.port
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".rube")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "rube.db"),
		Config: filepath.Join(root, "config.yaml"),

		RunDir:   filepath.Join(root, "run"),
		PortFile: filepath.Join(root, "run", "http.port"),
	}
}

// EnsureDirs creates all subdirectories under .rube/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes runtime files left by a server.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PortFile)
}
