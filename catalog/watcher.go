package catalog

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/openmoniker/openmoniker/errors"
)

// FileWatcher watches the catalog files and triggers a reload when they
// change, debouncing rapid successive writes. It complements the interval
// reloader: editors and deploy tooling produce change bursts that would
// otherwise wait out the full interval.
type FileWatcher struct {
	reloader *Reloader
	watcher  *fsnotify.Watcher
	logger   *zap.SugaredLogger

	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	done           chan struct{}
}

// NewFileWatcher creates a watcher over the given catalog files
func NewFileWatcher(reloader *Reloader, paths []string, logger *zap.SugaredLogger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "watch catalog file %s", path)
		}
	}

	return &FileWatcher{
		reloader:       reloader,
		watcher:        watcher,
		logger:         logger,
		debouncePeriod: 500 * time.Millisecond,
		done:           make(chan struct{}),
	}, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start() {
	go fw.watchLoop()
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	close(fw.done)
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop() {
	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if isBackupFile(event.Name) {
				continue
			}
			fw.logger.Infow("Catalog file changed",
				"file", event.Name,
				"op", event.Op.String(),
			)
			fw.scheduleReload()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warnw("Catalog watcher error", "error", err)
		}
	}
}

// scheduleReload debounces a burst of events into one reload
func (fw *FileWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debouncePeriod, func() {
		fw.reloader.Reload() //nolint:errcheck
	})
}

// isBackupFile filters editor temp/backup artifacts
func isBackupFile(name string) bool {
	return strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".bak") ||
		strings.HasSuffix(name, ".tmp")
}
