package ports

// Watcher monitors a file for changes and triggers a pipeline re-run.
// Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. onChange is called with the absolute
	// path after each debounced write, create, rename or remove. The callback
	// may be invoked from any goroutine. Returns an error if the file's
	// directory doesn't exist or permissions are insufficient.
	Watch(path string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
