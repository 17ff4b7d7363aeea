package stream

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleTime lets editors finish multi-step saves before the file is read.
const settleTime = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk. The directory is
// watched rather than the file so that editors which save by rename are
// followed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(*Config)
	logger   *log.Logger
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewWatcher starts watching path. onChange is called on the watcher's
// goroutine with each configuration that loads and validates; invalid
// files are logged and skipped.
func NewWatcher(path string, onChange func(*Config), logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher:  w,
		path:     abs,
		onChange: onChange,
		logger:   logger,
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	if watcher.logger == nil {
		watcher.logger = log.Default()
	}
	go watcher.run()
	return watcher, nil
}

// Close stops watching and waits for the watcher goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	settle := time.NewTimer(settleTime)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			settle.Reset(settleTime)
		case <-settle.C:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("[watcher] %v", err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	c, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Printf("[watcher] keeping previous config: %v", err)
		return
	}
	w.logger.Printf("[watcher] %s changed", w.path)
	w.onChange(c)
}
