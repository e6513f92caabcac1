package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file when it changes on disk and hands the result to the UI thread.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	debounce *debouncer

	post      func(func())
	onChange  func(Config)
	overrides *Flags

	mu     sync.Mutex
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewWatcher starts watching path. The containing directory is watched so that editors which
// replace the file on save are still seen.
//
// Parameters:
//   - path: the config file
//   - debounce: how long writes must settle before reloading; <= 0 uses DefaultDebounce
//   - post: schedules a function on the UI thread, usually window.Post
//   - onChange: receives each successfully reloaded config on the UI thread
//   - options: functional options, such as WithOverrides
//
// Returns:
//   - *Watcher: the running watcher
//   - error: error if the file system watch cannot be set up
func NewWatcher(path string, debounce time.Duration, post func(func()), onChange func(Config), options ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		debounce: newDebouncer(debounce),
		post:     post,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	w.wg.Add(1)
	go w.loop()
	log.Printf("[Config] watching %s", abs)
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.debounce.trigger(w.reload)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[Config] watch error: %v", err)
		}
	}
}

// reload runs on a debounce timer goroutine. It registers with wg so Close can wait for it, and
// does nothing once Close has started.
func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	cfg, err := w.read()
	if err != nil {
		log.Printf("[Config] reload failed, keeping current settings: %v", err)
		return
	}
	log.Printf("[Config] reloaded %s", w.path)
	w.post(func() {
		w.onChange(cfg)
	})
}

// read loads the file and re-applies the command-line overrides, if any.
func (w *Watcher) read() (Config, error) {
	cfg, err := Load(w.path)
	if err != nil {
		return Config{}, err
	}
	if w.overrides == nil {
		return cfg, nil
	}
	return w.overrides.Apply(cfg)
}

// Close stops watching and waits for a reload already in progress. Pending reloads are dropped.
// Safe to call more than once.
//
// Returns:
//   - error: error from closing the file system watch
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()

		close(w.done)
		w.debounce.cancel()
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
