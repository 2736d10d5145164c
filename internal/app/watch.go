package app

import (
	"context"

	"github.com/corey/rube/internal/ports"
)

// WatchAndRun calls run once, then again each time path changes, until ctx
// is done. Changes that arrive while run is busy collapse into one re-run.
func WatchAndRun(ctx context.Context, w ports.Watcher, path string, run func(context.Context)) error {
	trigger := make(chan struct{}, 1)
	err := w.Watch(path, func(string) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	run(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			run(ctx)
		}
	}
}
