package ringbuf

import (
	"errors"
	"sync/atomic"
)

// Word framing: the low byte of a packed word is the tag byte. Its top two
// bits carry the payload length (1..3); the remaining six bits identify the
// record type. Payload bytes occupy the word's higher bytes, low byte first.
const (
	wordLenShift = 6
	wordTagMask  = 0x3f

	// MaxWordPayload is the largest payload a packed word can carry.
	MaxWordPayload = 3

	minCapacity = 16
)

var errCapacity = errors.New("ringbuf: capacity must be at least 16 bytes")

// Buffer is a fixed-capacity circular byte store with independent write
// (head) and read (tail) cursors. One slot is sacrificed so head==tail always
// means empty. Created once at startup; there is no teardown.
type Buffer struct {
	buf      []byte
	capacity uint32

	// Cursors live in [0, capacity). Updates happen behind the guard (head)
	// or on the single consumer (tail); both are published with atomic stores
	// so the other side's arithmetic never takes the updater's lock.
	head atomic.Uint32
	tail atomic.Uint32

	mu guard

	acceptedRecords atomic.Uint64
	acceptedBytes   atomic.Uint64
	droppedRecords  atomic.Uint64
	droppedBytes    atomic.Uint64
}

// New creates a buffer with the given capacity in bytes.
func New(capacity int) (*Buffer, error) {
	if capacity < minCapacity {
		return nil, errCapacity
	}
	return &Buffer{
		buf:      make([]byte, capacity),
		capacity: uint32(capacity),
	}, nil
}

// Capacity returns the backing array size in bytes.
func (b *Buffer) Capacity() int { return int(b.capacity) }

// InUse returns the number of committed-but-undrained bytes.
func (b *Buffer) InUse() int {
	h := b.head.Load()
	t := b.tail.Load()
	return int((h + b.capacity - t) % b.capacity)
}

// Free returns the number of bytes a producer may still append.
func (b *Buffer) Free() int {
	return int(b.capacity) - 1 - b.InUse()
}

// free is the under-lock variant used on the producer paths.
func (b *Buffer) free() uint32 {
	h := b.head.Load()
	t := b.tail.Load()
	return b.capacity - 1 - (h+b.capacity-t)%b.capacity
}

// PackWord builds an interrupt-path word from a six-bit record id and a one
// to three byte payload. It returns false when the payload length cannot be
// encoded.
func PackWord(id byte, payload []byte) (uint32, bool) {
	n := len(payload)
	if n < 1 || n > MaxWordPayload {
		return 0, false
	}
	w := uint32(byte(n)<<wordLenShift | id&wordTagMask)
	for i := 0; i < n; i++ {
		w |= uint32(payload[i]) << (8 * uint(i+1))
	}
	return w, true
}

// TryWriteWord appends the record packed into word: the tag byte followed by
// the embedded payload bytes. It rejects without mutation when the embedded
// length is outside 1..3 or free space is insufficient, and never blocks.
// Safe for concurrent callers on the fast acquisition path.
func (b *Buffer) TryWriteWord(word uint32) bool {
	tag := byte(word)
	n := uint32(tag >> wordLenShift)
	if n < 1 || n > MaxWordPayload {
		return false
	}

	b.mu.lockFast()
	if n+1 > b.free() {
		b.mu.unlock()
		b.droppedRecords.Add(1)
		b.droppedBytes.Add(uint64(n) + 1)
		return false
	}
	h := b.head.Load()
	b.buf[h] = tag
	for i := uint32(0); i < n; i++ {
		b.buf[(h+1+i)%b.capacity] = byte(word >> (8 * (i + 1)))
	}
	b.head.Store((h + n + 1) % b.capacity)
	b.mu.unlock()

	b.acceptedRecords.Add(1)
	b.acceptedBytes.Add(uint64(n) + 1)
	return true
}

// TryWrite appends a task-context record: the explicit tag byte followed by
// the payload. The append is all-or-nothing; on insufficient space the buffer
// is left untouched and the drop is counted.
func (b *Buffer) TryWrite(tag byte, payload []byte) bool {
	n := uint32(len(payload))

	b.mu.lock()
	if n+1 > b.free() {
		b.mu.unlock()
		b.droppedRecords.Add(1)
		b.droppedBytes.Add(uint64(n) + 1)
		return false
	}
	h := b.head.Load()
	b.buf[h] = tag
	pos := (h + 1) % b.capacity
	first := copy(b.buf[pos:], payload)
	if first < len(payload) {
		copy(b.buf, payload[first:])
	}
	b.head.Store((h + n + 1) % b.capacity)
	b.mu.unlock()

	b.acceptedRecords.Add(1)
	b.acceptedBytes.Add(uint64(n) + 1)
	return true
}

// Drain returns up to two contiguous spans of the backing array covering at
// most max committed bytes, in order. The second span is non-nil only when
// the range wraps past the end of the array. Drain does not advance the read
// cursor; the caller frees space with Commit once the bytes are durable.
// Consumer-only.
func (b *Buffer) Drain(max int) (first, second []byte) {
	if max <= 0 {
		return nil, nil
	}
	t := b.tail.Load()
	h := b.head.Load()
	avail := (h + b.capacity - t) % b.capacity
	n := uint32(max)
	if n > avail {
		n = avail
	}
	if n == 0 {
		return nil, nil
	}
	if t+n <= b.capacity {
		return b.buf[t : t+n], nil
	}
	straight := b.capacity - t
	return b.buf[t:], b.buf[:n-straight]
}

// Commit advances the read cursor by n bytes, freeing that space for
// producers. Call only after the drained bytes are confirmed durable.
// Consumer-only.
func (b *Buffer) Commit(n int) {
	t := b.tail.Load()
	b.tail.Store((t + uint32(n)) % b.capacity)
}

// Counters is a snapshot of the buffer's accounting.
type Counters struct {
	AcceptedRecords uint64
	AcceptedBytes   uint64
	DroppedRecords  uint64
	DroppedBytes    uint64
}

// Stats returns the current accept/drop counters.
func (b *Buffer) Stats() Counters {
	return Counters{
		AcceptedRecords: b.acceptedRecords.Load(),
		AcceptedBytes:   b.acceptedBytes.Load(),
		DroppedRecords:  b.droppedRecords.Load(),
		DroppedBytes:    b.droppedBytes.Load(),
	}
}
