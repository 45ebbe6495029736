package api

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"taxi-fare-model/pipeline"
)

// ModelLoader hands out the pipeline a request predicts with.
type ModelLoader interface {
	Load() (*pipeline.Pipeline, error)
}

// FileLoader decodes the model file on every call.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load() (*pipeline.Pipeline, error) {
	return pipeline.Load(l.Path)
}

// CachedLoader keeps the last decoded pipeline until the model file changes
// on disk or Invalidate is called.
type CachedLoader struct {
	path    string
	watcher *fsnotify.Watcher

	mu         sync.RWMutex
	cached     *pipeline.Pipeline
	generation uint64
}

// NewCachedLoader watches the directory holding path, since models are
// replaced by renaming a new file over the old one.
func NewCachedLoader(path string) (*CachedLoader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch model directory: %w", err)
	}

	l := &CachedLoader{path: abs, watcher: watcher}
	go l.watch()
	return l, nil
}

func (l *CachedLoader) watch() {
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != l.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				l.Invalidate()
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Model watcher error: %v", err)
			l.Invalidate()
		}
	}
}

func (l *CachedLoader) Load() (*pipeline.Pipeline, error) {
	l.mu.RLock()
	p, gen := l.cached, l.generation
	l.mu.RUnlock()
	if p != nil {
		return p, nil
	}

	p, err := pipeline.Load(l.path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	// Keep the result only if nothing invalidated the cache while decoding.
	if l.generation == gen {
		l.cached = p
	}
	l.mu.Unlock()
	return p, nil
}

// Invalidate drops the cached pipeline; the next Load reads the file again.
func (l *CachedLoader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.generation++
	l.mu.Unlock()
}

// Close stops watching the model file.
func (l *CachedLoader) Close() error {
	return l.watcher.Close()
}
