package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/cascades/engine/core"
)

// Watcher reloads a scene file whenever it is written or replaced and
// publishes each successfully parsed version on Updates.
type Watcher struct {
	path string

	mutex    sync.Mutex
	isClosed bool
	wg       sync.WaitGroup

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	updates  chan *SceneFile
	errors   chan error
}

// NewWatcher starts watching path. The parent directory is watched rather
// than the file itself so editors that save by rename are still seen.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	w := &Watcher{
		path:     abs,
		fsnotify: fsWatch,
		updates:  make(chan *SceneFile),
		errors:   make(chan error),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

func (w *Watcher) Updates() <-chan *SceneFile {
	return w.updates
}

func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and closes both channels.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return core.ErrWatcherClosed
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	w.wg.Wait()
	return w.fsnotify.Close()
}

func (w *Watcher) start() {
	defer w.wg.Done()
	defer close(w.updates)
	defer close(w.errors)

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			core.LogDebug("scene file %s changed (%s)", w.path, e.Op)

			sf, err := Load(w.path)
			if err != nil {
				if !w.publishError(err) {
					return
				}
				continue
			}
			select {
			case w.updates <- sf:
			case <-w.done:
				return
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			if !w.publishError(err) {
				return
			}

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) publishError(err error) bool {
	core.LogError("scene file watcher %s: %s", w.path, err)
	select {
	case w.errors <- err:
		return true
	case <-w.done:
		return false
	}
}
