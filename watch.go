package main

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 100 * time.Millisecond

// RoomWatcher reloads room templates into a registry when their files
// change on disk.
type RoomWatcher struct {
	watcher  *fsnotify.Watcher
	registry *RoomRegistry
	logger   *zap.Logger

	// Reloaded receives the name of every file that was reloaded or removed.
	Reloaded chan string

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewRoomWatcher(registry *RoomRegistry, logger *zap.Logger, dirs ...string) (*RoomWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &RoomWatcher{
		watcher:  w,
		registry: registry,
		logger:   logger,
		Reloaded: make(chan string, 16),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *RoomWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Reloaded)
	})
	return err
}

func (w *RoomWatcher) run() {
	defer close(w.done)

	pending := make(map[string]*time.Timer)
	fire := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isRoomFile(event.Name) {
				continue
			}

			// A file is handled once it has been quiet for reloadDebounce.
			if t, ok := pending[event.Name]; ok {
				t.Reset(reloadDebounce)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(reloadDebounce, func() {
				select {
				case fire <- name:
				case <-w.closeCh:
				}
			})
		case name := <-fire:
			delete(pending, name)
			w.reload(name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("⚠️  Room watcher error", zap.Error(err))
		case <-w.closeCh:
			return
		}
	}
}

// reload applies the current state of file: a missing file drops the room
// it served, anything else is loaded again.
func (w *RoomWatcher) reload(file string) {
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		id, removed := w.registry.RemoveFile(file)
		w.logger.Info("🗑️  Room file removed",
			zap.String("file", file),
			zap.String("room", id),
			zap.Bool("roomRemoved", removed))
		w.notify(file)
		return
	}

	if err := loadRoomFile(file, w.registry); err != nil {
		w.logger.Warn("⚠️  Failed to reload room", zap.String("file", file), zap.Error(err))
		return
	}
	w.notify(file)
}

func (w *RoomWatcher) notify(file string) {
	select {
	case w.Reloaded <- file:
	default:
	}
}
