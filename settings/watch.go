package settings

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period a Watcher waits for after a change
// before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a settings file whenever it changes and notifies
// subscribers with the new settings.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	current  *Settings
	subs     map[int]func(*Settings)
	nextID   int
	timer    *time.Timer
	reloads  sync.Mutex // keeps AfterFunc reloads from overlapping; mu is not held while notifying
	done     chan struct{}
	closed   sync.Once
}

// Subscription is a registered change listener. Closing it unsubscribes.
type Subscription struct {
	w  *Watcher
	id int
}

// Watch loads the settings at path and starts observing the file. The
// directory of path must exist; the file itself may be created later.
// A debounce of 0 selects DefaultDebounce.
func Watch(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	current, err := Load(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch settings directory: %w", err)
	}
	w := &Watcher{
		path:     path,
		debounce: debounce,
		fsw:      fsw,
		current:  current,
		subs:     make(map[int]func(*Settings)),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Settings returns the most recently loaded settings.
func (w *Watcher) Settings() *Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Subscribe registers f to be called with every reloaded settings snapshot.
// Calls happen on a background goroutine, one at a time.
func (w *Watcher) Subscribe(f func(*Settings)) *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.subs[id] = f
	return &Subscription{w: w, id: id}
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	delete(s.w.subs, s.id)
}

// Close stops watching. Pending reloads are dropped.
func (w *Watcher) Close() error {
	var err error
	w.closed.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop() {
	name := filepath.Clean(w.path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			tracer().Errorf("settings watcher: %v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.reloads.Lock()
	defer w.reloads.Unlock()
	select {
	case <-w.done:
		return
	default:
	}
	s, err := Load(w.path)
	if err != nil {
		tracer().Errorf("reload settings: %v", err)
		return
	}
	w.mu.Lock()
	w.current = s
	subs := make([]func(*Settings), 0, len(w.subs))
	for _, f := range w.subs {
		subs = append(subs, f)
	}
	w.mu.Unlock()
	tracer().Infof("settings reloaded from %s", w.path)
	for _, f := range subs {
		f(s)
	}
}
