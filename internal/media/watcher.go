package media

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/mookiedog/umod4-sub001/internal/blockfs"
	logpkg "github.com/mookiedog/umod4-sub001/pkg/log"
)

const defaultWatchInterval = 250 * time.Millisecond

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Bridge receives mount/unmount events.
	Bridge *Bridge
	// Path is the mount directory to poll for.
	Path string
	// BlockSize is the logical block size handed to mounted volumes.
	BlockSize uint32
	// Interval between polls. Defaults to 250ms.
	Interval time.Duration
	// Logger for mount/unmount events. Optional.
	Logger logpkg.Logger
}

// Watcher polls for the mount path and drives the bridge, standing in for the
// card-detect interrupt of the source hardware.
type Watcher struct {
	bridge    *Bridge
	path      string
	blockSize uint32
	interval  time.Duration
	log       logpkg.Logger

	mounted bool
}

// NewWatcher creates a watcher. Bridge and Path are required.
func NewWatcher(opts WatcherOptions) (*Watcher, error) {
	if opts.Bridge == nil {
		return nil, errors.New("media: WatcherOptions.Bridge is required")
	}
	if opts.Path == "" {
		return nil, errors.New("media: WatcherOptions.Path is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultWatchInterval
	}
	log := opts.Logger
	if log == nil {
		log = logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel))
	}
	return &Watcher{
		bridge:    opts.Bridge,
		path:      opts.Path,
		blockSize: opts.BlockSize,
		interval:  opts.Interval,
		log:       log.WithComponent("media"),
	}, nil
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		w.Poll()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll performs one presence check, publishing or clearing the volume when
// the mount path's presence changed since the previous poll.
func (w *Watcher) Poll() {
	info, err := os.Stat(w.path)
	present := err == nil && info.IsDir()

	switch {
	case present && !w.mounted:
		vol, err := blockfs.OpenDir(w.path, w.blockSize)
		if err != nil {
			w.log.Warn("media present but unusable", logpkg.Str("path", w.path), logpkg.Err(err))
			return
		}
		w.mounted = true
		w.bridge.OnMediaReady(vol)
		w.log.Info("media mounted", logpkg.Str("path", w.path), logpkg.Uint32("block_size", w.blockSize))
	case !present && w.mounted:
		w.mounted = false
		w.bridge.OnMediaRemoved()
		w.log.Info("media removed", logpkg.Str("path", w.path))
	}
}
