package logwriter

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/mookiedog/umod4-sub001/internal/blockfs"
	"github.com/mookiedog/umod4-sub001/internal/media"
	"github.com/mookiedog/umod4-sub001/internal/ringbuf"
	logpkg "github.com/mookiedog/umod4-sub001/pkg/log"
)

const defaultPollInterval = 25 * time.Millisecond

var errNoProgress = errors.New("logwriter: write made no progress")

// Options configures a writer Task.
type Options struct {
	// Ring is the buffer the task drains. Required.
	Ring *ringbuf.Buffer
	// Bridge supplies the volume handle and receives the active file name.
	// Required.
	Bridge *media.Bridge
	// FilePrefix and FileExt frame the sequential log file names.
	FilePrefix string
	FileExt    string
	// PollInterval bounds the sleep while waiting for media or data.
	// Defaults to 25ms.
	PollInterval time.Duration
	// Logger for lifecycle and failure events. Optional.
	Logger logpkg.Logger
}

// Task is the sole consumer of the ring buffer: a perpetual supervisory loop
// that opens sequential log files on the mounted volume and performs
// block-aligned durable writes.
type Task struct {
	ring   *ringbuf.Buffer
	bridge *media.Bridge
	log    logpkg.Logger
	prefix string
	ext    string
	poll   time.Duration

	state  atomic.Int32
	window atomic.Uint32
	stats  Stats

	// Loop-local storage context. Touched only by the Run goroutine.
	vol    blockfs.Volume
	file   blockfs.File
	name   string
	offset uint32
}

// NewTask creates a writer task.
func NewTask(opts Options) (*Task, error) {
	if opts.Ring == nil {
		return nil, errors.New("logwriter: Options.Ring is required")
	}
	if opts.Bridge == nil {
		return nil, errors.New("logwriter: Options.Bridge is required")
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = "log_"
	}
	if opts.FileExt == "" {
		opts.FileExt = ".dat"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	log := opts.Logger
	if log == nil {
		log = logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel))
	}
	t := &Task{
		ring:   opts.Ring,
		bridge: opts.Bridge,
		log:    log.WithComponent("logwriter"),
		prefix: opts.FilePrefix,
		ext:    opts.FileExt,
		poll:   opts.PollInterval,
	}
	t.state.Store(int32(StateUnmounted))
	return t, nil
}

// State returns the loop's current state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Stats returns a snapshot of the writer's counters.
func (t *Task) Stats() Snapshot {
	return t.stats.Snapshot()
}

// CurrentWindow returns the current flush window in bytes.
func (t *Task) CurrentWindow() uint32 {
	return t.window.Load()
}

// Run drives the supervisory loop. The loop has no terminal state of its own;
// it exits only when ctx is cancelled, and only at an iteration boundary.
func (t *Task) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		st := t.State()
		vol := t.bridge.Volume()

		var ev Event
		if vol == nil && st != StateUnmounted {
			// Media removal preempts everything. The in-flight file is not
			// closed or salvaged: the device may no longer be addressable.
			t.abandon()
			t.log.Info("media gone, abandoning log file")
			ev = EventMediaGone
		} else {
			t.vol = vol
			switch st {
			case StateUnmounted:
				ev = t.stepUnmounted(ctx)
			case StateOpenLog:
				ev = t.stepOpenLog(ctx)
			case StateCalcFlushSize:
				ev = t.stepCalcFlushSize()
			case StateWaitForData:
				ev = t.stepWaitForData(ctx)
			case StateWriteData:
				ev = t.stepWriteData(ctx)
			case StateWriteFailure:
				ev = t.stepWriteFailure()
			}
		}
		t.state.Store(int32(Transition(st, ev)))
	}
}

func (t *Task) stepUnmounted(ctx context.Context) Event {
	if t.vol != nil {
		return EventMediaReady
	}
	t.sleep(ctx)
	return EventNone
}

func (t *Task) stepOpenLog(ctx context.Context) Event {
	names, err := t.vol.Names()
	if err != nil {
		t.stats.openError()
		t.log.Warn("volume scan failed", logpkg.Err(err))
		t.sleep(ctx)
		return EventOpenFailed
	}
	name := NextName(names, t.prefix, t.ext)
	f, err := t.vol.Create(name)
	if err != nil {
		t.stats.openError()
		t.log.Warn("log file create failed", logpkg.Str("name", name), logpkg.Err(err))
		t.sleep(ctx)
		return EventOpenFailed
	}
	t.file = f
	t.name = name
	t.offset = 0
	t.bridge.SetCurrentLogName(name)
	t.stats.fileOpened()
	t.log.Info("log file opened", logpkg.Str("name", name))
	return EventOpened
}

func (t *Task) stepCalcFlushSize() Event {
	w := blockfs.FlushWindow(t.offset, t.vol.BlockSize())
	// A window wider than the ring can ever hold would starve WaitForData.
	if max := uint32(t.ring.Capacity() - 1); w > max {
		t.log.Warn("flush window exceeds buffer capacity, clamping",
			logpkg.Uint32("window", w), logpkg.Uint32("max", max))
		w = max
	}
	t.window.Store(w)
	return EventWindowComputed
}

func (t *Task) stepWaitForData(ctx context.Context) Event {
	if t.ring.InUse() >= int(t.window.Load()) {
		return EventDataReady
	}
	t.sleep(ctx)
	return EventNoData
}

func (t *Task) stepWriteData(ctx context.Context) Event {
	// The window may straddle the end of the backing array: at most two
	// physical writes, tail-to-end then the wrapped head segment.
	first, second := t.ring.Drain(int(t.window.Load()))
	total := len(first) + len(second)
	if total == 0 {
		t.sleep(ctx)
		return EventNoData
	}

	if err := t.writeSegment(first); err != nil {
		t.stats.writeError()
		t.log.Error("log write failed", logpkg.Str("name", t.name), logpkg.Err(err))
		return EventWriteFailed
	}
	if err := t.writeSegment(second); err != nil {
		t.stats.writeError()
		t.log.Error("log write failed", logpkg.Str("name", t.name), logpkg.Err(err))
		return EventWriteFailed
	}

	start := time.Now()
	if err := t.file.Sync(); err != nil {
		t.stats.syncError()
		t.log.Error("log sync failed", logpkg.Str("name", t.name), logpkg.Err(err))
		return EventWriteFailed
	}
	t.stats.observeSync(time.Since(start))

	// Only now are the drained bytes durable; release them to producers.
	t.ring.Commit(total)
	t.offset += uint32(total)
	return EventWindowSynced
}

// writeSegment pushes one contiguous span to the file, retrying short writes
// with the remainder. Two successive zero-progress attempts escalate.
func (t *Task) writeSegment(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	retried := false
	for len(p) > 0 {
		start := time.Now()
		n, err := t.file.Write(p)
		if n > 0 {
			t.stats.observeWrite(time.Since(start), n)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			if retried {
				return errNoProgress
			}
			retried = true
			continue
		}
		retried = false
		p = p[n:]
	}
	return nil
}

func (t *Task) stepWriteFailure() Event {
	// Abandon unconditionally: no rename, no truncation, no salvage of the
	// append position. A fresh file is the recovery path.
	t.log.Warn("abandoning log file after device error", logpkg.Str("name", t.name))
	t.abandon()
	return EventFileAbandoned
}

func (t *Task) abandon() {
	t.file = nil
	t.name = ""
	t.bridge.SetCurrentLogName("")
}

func (t *Task) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(t.poll):
	}
}
