package config

// WatcherOption is a functional option for configuring a Watcher.
type WatcherOption func(*Watcher)

// WithOverrides re-applies the explicitly set command-line flags to every reloaded file, so
// an edit never reverts a value given on the command line.
//
// Parameters:
//   - flags: the parsed flags; nil disables overrides
//
// Returns:
//   - WatcherOption: option function to apply
func WithOverrides(flags *Flags) WatcherOption {
	return func(w *Watcher) {
		w.overrides = flags
	}
}
