package schemafile

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder keeps the current Bundle of a schema file and swaps it on reload.
// A failed reload keeps the previous bundle.
type Holder struct {
	mu       sync.RWMutex
	bundle   *Bundle
	path     string
	log      zerolog.Logger
	opts     []Option
	watcher  *fsnotify.Watcher
	onChange []func(*Bundle)
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHolder loads path once. opts are reused on every reload.
func NewHolder(path string, log zerolog.Logger, opts ...Option) (*Holder, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	opts = append([]Option{WithLogger(log)}, opts...)
	b, err := LoadFile(abs, opts...)
	if err != nil {
		return nil, err
	}
	return &Holder{bundle: b, path: abs, log: log, opts: opts, stopCh: make(chan struct{})}, nil
}

// Get returns the current bundle.
func (h *Holder) Get() *Bundle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bundle
}

// Reload reads the file again and notifies OnChange listeners.
func (h *Holder) Reload() error {
	b, err := LoadFile(h.path, h.opts...)
	if err != nil {
		h.log.Error().Err(err).Str("path", h.path).Msg("schema reload failed, keeping previous schema")
		return fmt.Errorf("reload schema: %w", err)
	}
	h.mu.Lock()
	old := h.bundle
	h.bundle = b
	fns := append([]func(*Bundle){}, h.onChange...)
	h.mu.Unlock()

	h.log.Info().Int("old_shapes", len(old.shapes)).Int("new_shapes", len(b.shapes)).Msg("schema reloaded")
	for _, fn := range fns {
		fn(b)
	}
	return nil
}

// OnChange registers fn to run after every successful reload.
func (h *Holder) OnChange(fn func(*Bundle)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// Watch reloads whenever the file is written or recreated. The directory is
// watched so editors that save by rename are seen.
func (h *Holder) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(h.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.watcher = w
	go h.watchLoop(w)
	h.log.Info().Str("path", h.path).Msg("watching schema file")
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop(w *fsnotify.Watcher) {
	name := filepath.Base(h.path)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			h.log.Debug().Str("event", ev.Op.String()).Str("file", ev.Name).Msg("schema file changed")
			_ = h.Reload()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.log.Error().Err(err).Msg("schema watcher error")
		case <-h.stopCh:
			return
		}
	}
}
