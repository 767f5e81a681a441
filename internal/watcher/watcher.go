// Package watcher emits debounced events when the configuration or keymap
// file changes on disk, so a running client reloads without a restart.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType says which file changed.
type EventType int

const (
	// EventConfigChanged - the main configuration file was written.
	EventConfigChanged EventType = iota
	// EventKeymapChanged - the keymap file was written.
	EventKeymapChanged
)

// Event is one debounced change notification.
type Event struct {
	Type EventType
	Path string
}

// Watcher watches the configuration directory.
type Watcher struct {
	fs         *fsnotify.Watcher
	configPath string
	keymapPath string
	debouncer  *debouncer
	events     chan Event
	done       chan struct{}
}

// New watches the directory containing configPath. keymapPath may be empty
// when the built-in keymap is in use.
func New(configPath, keymapPath string) (*Watcher, error) {
	return NewWithDebounceDelay(configPath, keymapPath, 0)
}

// NewWithDebounceDelay is New with an explicit debounce window, for tests.
func NewWithDebounceDelay(configPath, keymapPath string, delay time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fs:         fs,
		configPath: filepath.Clean(configPath),
		keymapPath: filepath.Clean(keymapPath),
		debouncer:  newDebouncer(delay),
		events:     make(chan Event, 16),
		done:       make(chan struct{}),
	}

	// Watch the directory, not the file: editors replace files by rename,
	// which drops a direct file watch.
	if err := fs.Add(filepath.Dir(w.configPath)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(w.configPath), err)
	}
	if keymapPath != "" && filepath.Dir(w.keymapPath) != filepath.Dir(w.configPath) {
		if err := fs.Add(filepath.Dir(w.keymapPath)); err != nil {
			fs.Close()
			return nil, fmt.Errorf("watch %s: %w", filepath.Dir(w.keymapPath), err)
		}
	}

	go w.loop()
	return w, nil
}

// Events returns the channel of debounced change notifications.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the watcher and closes the event channel.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) loop() {
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			out := w.translateEvent(ev)
			if out == nil {
				continue
			}
			if !w.debouncer.ShouldEmit(out.Path) {
				continue
			}
			select {
			case w.events <- *out:
			case <-w.done:
				return
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}

// translateEvent distills a raw fsnotify event into a typed one, or nil for
// files we do not care about.
func (w *Watcher) translateEvent(ev fsnotify.Event) *Event {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return nil
	}
	switch filepath.Clean(ev.Name) {
	case w.configPath:
		return &Event{Type: EventConfigChanged, Path: w.configPath}
	case w.keymapPath:
		if w.keymapPath == "." {
			return nil
		}
		return &Event{Type: EventKeymapChanged, Path: w.keymapPath}
	}
	return nil
}
