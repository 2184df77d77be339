package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReloadListener is notified after every successful snapshot swap with the
// node count of the new snapshot.
type ReloadListener func(nodes int)

// Reloader periodically re-reads the catalog files and swaps the registry
// snapshot. Parse failures retain the previous snapshot; the service keeps
// serving.
type Reloader struct {
	registry *Registry
	paths    []string
	interval time.Duration
	logger   *zap.SugaredLogger

	mu        sync.Mutex
	listeners []ReloadListener
	lastError error
	lastLoad  time.Time
}

// NewReloader creates a reloader for the given catalog files
func NewReloader(registry *Registry, paths []string, interval time.Duration, logger *zap.SugaredLogger) *Reloader {
	return &Reloader{
		registry: registry,
		paths:    paths,
		interval: interval,
		logger:   logger,
	}
}

// OnReload registers a listener called after each successful swap
func (rl *Reloader) OnReload(listener ReloadListener) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.listeners = append(rl.listeners, listener)
}

// Reload synchronously re-reads the catalog files and swaps the snapshot.
// On failure the previous snapshot is retained and the error returned.
func (rl *Reloader) Reload() (int, error) {
	nodes, err := LoadFiles(rl.paths)
	if err != nil {
		rl.mu.Lock()
		rl.lastError = err
		rl.mu.Unlock()
		rl.logger.Errorw("Catalog reload failed, retaining previous snapshot",
			"error", err,
		)
		return 0, err
	}

	rl.registry.AtomicReplace(nodes)

	rl.mu.Lock()
	rl.lastError = nil
	rl.lastLoad = time.Now().UTC()
	listeners := make([]ReloadListener, len(rl.listeners))
	copy(listeners, rl.listeners)
	rl.mu.Unlock()

	rl.logger.Infow("Catalog snapshot swapped",
		"nodes", len(nodes),
		"files", len(rl.paths),
	)

	for _, listener := range listeners {
		listener(len(nodes))
	}
	return len(nodes), nil
}

// LastError returns the most recent reload failure, or nil
func (rl *Reloader) LastError() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.lastError
}

// LastLoad returns the time of the most recent successful swap
func (rl *Reloader) LastLoad() time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.lastLoad
}

// Start runs the interval reload loop until ctx is cancelled. A cancelled
// reload leaves the previous snapshot intact.
func (rl *Reloader) Start(ctx context.Context) {
	if rl.interval <= 0 {
		rl.logger.Infow("Interval reload disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(rl.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Errors are logged and surfaced via LastError; background
				// failures never disrupt serving.
				rl.Reload() //nolint:errcheck
			}
		}
	}()
}
