package media

import (
	"sync"

	"github.com/mookiedog/umod4-sub001/internal/blockfs"
)

// Bridge mediates mount and unmount events into a handle the writer task can
// safely observe. The bridge only swaps the handle; the writer is the sole
// issuer of storage operations on it, and it re-reads the handle at the top
// of every loop iteration rather than holding a lock across the iteration.
type Bridge struct {
	mu      sync.RWMutex
	vol     blockfs.Volume
	logName string
}

// NewBridge creates an empty bridge with no media present.
func NewBridge() *Bridge {
	return &Bridge{}
}

// OnMediaReady publishes a new volume handle. The writer task acts on it at
// its next loop iteration.
func (b *Bridge) OnMediaReady(vol blockfs.Volume) {
	b.mu.Lock()
	b.vol = vol
	b.mu.Unlock()
}

// OnMediaRemoved clears the handle. The writer observes the removal before
// any other check in its loop.
func (b *Bridge) OnMediaRemoved() {
	b.mu.Lock()
	b.vol = nil
	b.logName = ""
	b.mu.Unlock()
}

// Volume returns the current handle, or nil when no media is present.
func (b *Bridge) Volume() blockfs.Volume {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.vol
}

// SetCurrentLogName records the name of the actively-appended file. Called by
// the writer task; an empty name means no file is open.
func (b *Bridge) SetCurrentLogName(name string) {
	b.mu.Lock()
	b.logName = name
	b.mu.Unlock()
}

// CurrentLogName exposes the actively-appended file's name so other
// subsystems can avoid transferring a file still being written.
func (b *Bridge) CurrentLogName() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.logName
}
