package config

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads configuration from disk whenever its source file
// changes, handing each successfully validated reload to OnReload. A
// failed reload is logged and the previous configuration is kept in
// effect -- a typo in a hand-edited tunables file should never crash a
// running pipeline or report server.
type Watcher struct {
	path     string
	OnReload func(*Config)

	watcher *fsnotify.Watcher
	stop    chan struct{}
}

// NewWatcher creates a Watcher for the YAML file at path. Call Watch to
// start it and Close to stop.
func NewWatcher(path string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{path: path, OnReload: onReload, watcher: fw, stop: make(chan struct{})}, nil
}

// Watch blocks processing filesystem events until Close is called. Run it
// in its own goroutine.
func (w *Watcher) Watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadFromYAML(w.path)
			if err != nil {
				log.Printf("config: reload of %s failed, keeping previous config: %v", w.path, err)
				continue
			}
			if w.OnReload != nil {
				w.OnReload(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config: watch error on %s: %v", w.path, err)
		case <-w.stop:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stop)
	return w.watcher.Close()
}
