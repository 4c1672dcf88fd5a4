// ABOUTME: Config hot reload using fsnotify with a debounce window
// ABOUTME: Emits a Reload on the returned channel whenever the config file settles after a change
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces editor save storms into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Reload carries a freshly loaded config or the error loading it.
type Reload struct {
	Config *Config
	Err    error
}

// debouncer runs only the last callback scheduled within its window.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Watch watches the config file's directory (editors often replace the file) and sends a
// Reload after each settled change. The channel closes when ctx is done.
func Watch(ctx context.Context, path string, delay time.Duration) (<-chan Reload, error) {
	if path == "" {
		path = DefaultPath()
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	path = filepath.Clean(path)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", filepath.Dir(path), err)
	}

	out := make(chan Reload, 1)
	d := &debouncer{delay: delay}

	var mu sync.Mutex
	closed := false

	send := func() {
		cfg, err := Load(path)
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- Reload{Config: cfg, Err: err}:
		default:
			// A reload is already pending; the consumer will read the newer file next time.
		}
	}

	go func() {
		defer func() {
			d.stop()
			fsw.Close()
			mu.Lock()
			closed = true
			close(out)
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			case evt, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != path {
					continue
				}
				if evt.Op.Has(fsnotify.Write) || evt.Op.Has(fsnotify.Create) || evt.Op.Has(fsnotify.Rename) {
					d.trigger(send)
				}
			}
		}
	}()

	return out, nil
}
