package tuning

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a tuning file whenever it changes on disk.
// Invalid files are reported on Errors and the previous tuning stays in effect.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	Updates chan Tuning
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func Watch(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files by rename.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w := &Watcher{
		path:    filepath.Clean(path),
		watcher: fw,
		Updates: make(chan Tuning, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	// Writes arrive as bursts (truncate, write); load once the burst settles.
	var reload <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reload = time.After(100 * time.Millisecond)
		case <-reload:
			reload = nil
			t, err := Load(w.path)
			if err != nil {
				w.send(nil, err)
				continue
			}
			w.send(&t, nil)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(nil, err)
		case <-w.closeCh:
			return
		}
	}
}

// send keeps only the newest pending value on each channel.
func (w *Watcher) send(t *Tuning, err error) {
	if t != nil {
		select {
		case <-w.Updates:
		default:
		}
		select {
		case w.Updates <- *t:
		case <-w.closeCh:
		}
		return
	}
	select {
	case <-w.Errors:
	default:
	}
	select {
	case w.Errors <- err:
	case <-w.closeCh:
	}
}
