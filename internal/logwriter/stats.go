package logwriter

import (
	"sync"
	"time"
)

// latency accumulates min/max/average timing for one operation class.
type latency struct {
	count uint64
	total time.Duration
	min   time.Duration
	max   time.Duration
	last  time.Duration
}

func (l *latency) observe(d time.Duration) {
	if l.count == 0 || d < l.min {
		l.min = d
	}
	if d > l.max {
		l.max = d
	}
	l.count++
	l.total += d
	l.last = d
}

func (l *latency) snapshot() LatencySnapshot {
	s := LatencySnapshot{
		Count: l.count,
		Min:   l.min,
		Max:   l.max,
		Last:  l.last,
	}
	if l.count > 0 {
		s.Avg = l.total / time.Duration(l.count)
	}
	return s
}

// LatencySnapshot is a point-in-time copy of one latency accumulator.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
	Last  time.Duration
}

// Stats tracks the writer task's observability counters. They never affect
// control flow.
type Stats struct {
	mu           sync.Mutex
	writes       latency
	syncs        latency
	bytesWritten uint64
	filesOpened  uint64
	openErrors   uint64
	writeErrors  uint64
	syncErrors   uint64
}

func (s *Stats) observeWrite(d time.Duration, n int) {
	s.mu.Lock()
	s.writes.observe(d)
	s.bytesWritten += uint64(n)
	s.mu.Unlock()
}

func (s *Stats) observeSync(d time.Duration) {
	s.mu.Lock()
	s.syncs.observe(d)
	s.mu.Unlock()
}

func (s *Stats) fileOpened() {
	s.mu.Lock()
	s.filesOpened++
	s.mu.Unlock()
}

func (s *Stats) openError() {
	s.mu.Lock()
	s.openErrors++
	s.mu.Unlock()
}

func (s *Stats) writeError() {
	s.mu.Lock()
	s.writeErrors++
	s.mu.Unlock()
}

func (s *Stats) syncError() {
	s.mu.Lock()
	s.syncErrors++
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of the writer's counters.
type Snapshot struct {
	Writes       LatencySnapshot
	Syncs        LatencySnapshot
	BytesWritten uint64
	FilesOpened  uint64
	OpenErrors   uint64
	WriteErrors  uint64
	SyncErrors   uint64
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Writes:       s.writes.snapshot(),
		Syncs:        s.syncs.snapshot(),
		BytesWritten: s.bytesWritten,
		FilesOpened:  s.filesOpened,
		OpenErrors:   s.openErrors,
		WriteErrors:  s.writeErrors,
		SyncErrors:   s.syncErrors,
	}
}
