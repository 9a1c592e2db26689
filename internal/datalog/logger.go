package datalog

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/mookiedog/umod4-sub001/internal/logwriter"
	"github.com/mookiedog/umod4-sub001/internal/media"
	"github.com/mookiedog/umod4-sub001/internal/ringbuf"
	logpkg "github.com/mookiedog/umod4-sub001/pkg/log"
)

// Options configures the telemetry logger.
type Options struct {
	// BufferBytes is the ring buffer capacity. Required.
	BufferBytes int
	// FilePrefix and FileExt frame log file names (defaults "log_", ".dat").
	FilePrefix string
	FileExt    string
	// PollInterval bounds the writer's sleep while waiting for media or data.
	PollInterval time.Duration
	// Logger for the pipeline's own diagnostics. Optional.
	Logger logpkg.Logger
}

// Logger is the process-wide telemetry logger: producer entry points on one
// side, the durable writer task on the other.
type Logger struct {
	ring   *ringbuf.Buffer
	bridge *media.Bridge
	task   *logwriter.Task
}

// New builds the pipeline. The returned Logger lives for the whole process.
func New(opts Options) (*Logger, error) {
	ring, err := ringbuf.New(opts.BufferBytes)
	if err != nil {
		return nil, err
	}
	bridge := media.NewBridge()
	task, err := logwriter.NewTask(logwriter.Options{
		Ring:         ring,
		Bridge:       bridge,
		FilePrefix:   opts.FilePrefix,
		FileExt:      opts.FileExt,
		PollInterval: opts.PollInterval,
		Logger:       opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Logger{ring: ring, bridge: bridge, task: task}, nil
}

// Run drives the writer task until ctx is cancelled.
func (l *Logger) Run(ctx context.Context) {
	l.task.Run(ctx)
}

// LogWord appends an interrupt-framing record packed into a single word.
// Never blocks; returns false when the record was rejected.
func (l *Logger) LogWord(word uint32) bool {
	return l.ring.TryWriteWord(word)
}

// Log appends a task-framing record: an explicit tag byte plus payload.
// Never blocks; returns false when the record was rejected.
func (l *Logger) Log(tag byte, payload []byte) bool {
	return l.ring.TryWrite(tag, payload)
}

// Bridge exposes the storage lifecycle bridge for the hot-plug manager.
func (l *Logger) Bridge() *media.Bridge {
	return l.bridge
}

// CurrentLogName reports the actively-appended file, or "" when none is open.
func (l *Logger) CurrentLogName() string {
	return l.bridge.CurrentLogName()
}

// Snapshot aggregates ring and writer counters.
type Snapshot struct {
	Ring     ringbuf.Counters
	Writer   logwriter.Snapshot
	InUse    int
	Capacity int
	State    logwriter.State
}

// Stats returns a point-in-time view of the pipeline's counters.
func (l *Logger) Stats() Snapshot {
	return Snapshot{
		Ring:     l.ring.Stats(),
		Writer:   l.task.Stats(),
		InUse:    l.ring.InUse(),
		Capacity: l.ring.Capacity(),
		State:    l.task.State(),
	}
}

// Pump chunks a companion-processor byte stream into word-framed records
// carrying the given six-bit record id, one to three payload bytes each,
// mirroring the byte-at-a-time ingest of the source hardware's UART path.
// Bytes arriving while the buffer is full are dropped and counted by the
// ring. Pump returns when the stream ends or ctx is cancelled.
func (l *Logger) Pump(ctx context.Context, r io.Reader, id byte) error {
	buf := make([]byte, 48)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		for off := 0; off < n; off += ringbuf.MaxWordPayload {
			end := off + ringbuf.MaxWordPayload
			if end > n {
				end = n
			}
			word, ok := ringbuf.PackWord(id, buf[off:end])
			if !ok {
				continue
			}
			l.LogWord(word)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
