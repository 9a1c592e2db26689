package blockfs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

// On-device layout: block 0 is a flat directory of fixed-size entries, data
// blocks follow. Files occupy contiguous runs of data blocks allocated in
// creation order, so the next free block is derived from the last entry.
const (
	dirBlock     = 0
	dirEntrySize = 32
	dirNameSize  = 24
)

type devEntry struct {
	name   string
	start  uint32
	length uint32
}

// DevVolume is a Volume written directly onto a raw Device, the mount path
// for a block-device image instead of a host directory.
type DevVolume struct {
	dev Device

	mu      sync.Mutex
	entries []devEntry
}

// OpenDevice mounts a device-backed volume, loading the directory from
// block 0. A blank or erased directory mounts as an empty volume.
func OpenDevice(dev Device) (*DevVolume, error) {
	bs := dev.BlockSize()
	if bs < MinBlockSize || bs < dirEntrySize {
		return nil, fmt.Errorf("blockfs: block size %d cannot hold a directory", bs)
	}
	if dev.BlockCount() < 2 {
		return nil, errors.New("blockfs: device leaves no data blocks")
	}
	buf := make([]byte, bs)
	if err := dev.Read(dirBlock, 0, buf); err != nil {
		return nil, fmt.Errorf("blockfs: read directory: %w", err)
	}
	v := &DevVolume{dev: dev}
	for off := 0; off+dirEntrySize <= len(buf); off += dirEntrySize {
		e, ok := parseDirEntry(buf[off:off+dirEntrySize], bs, dev.BlockCount())
		if !ok {
			break
		}
		v.entries = append(v.entries, e)
	}
	return v, nil
}

// parseDirEntry decodes one directory slot. A slot whose name does not start
// with a printable byte ends the directory; blank and erased media both read
// as empty this way.
func parseDirEntry(raw []byte, blockSize, blockCount uint32) (devEntry, bool) {
	if !printable(raw[0]) {
		return devEntry{}, false
	}
	n := 0
	for n < dirNameSize && raw[n] != 0 {
		if !printable(raw[n]) {
			return devEntry{}, false
		}
		n++
	}
	e := devEntry{
		name:   string(raw[:n]),
		start:  binary.BigEndian.Uint32(raw[dirNameSize:]),
		length: binary.BigEndian.Uint32(raw[dirNameSize+4:]),
	}
	if e.start < 1 || e.start+blocksFor(e.length, blockSize) > blockCount {
		return devEntry{}, false
	}
	return e, true
}

func printable(c byte) bool { return c >= 0x21 && c <= 0x7e }

// blocksFor returns the data blocks a file of the given length occupies. An
// empty file still holds its start block.
func blocksFor(length, blockSize uint32) uint32 {
	if length == 0 {
		return 1
	}
	return (length + blockSize - 1) / blockSize
}

// Create implements Volume. The new file's run starts at the first block
// past the last allocated file.
func (v *DevVolume) Create(name string) (File, error) {
	if len(name) == 0 || len(name) >= dirNameSize {
		return nil, fmt.Errorf("blockfs: file name %q too long for directory", name)
	}
	for i := 0; i < len(name); i++ {
		if !printable(name[i]) {
			return nil, fmt.Errorf("blockfs: file name %q has unencodable bytes", name)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range v.entries {
		if e.name == name {
			return nil, fmt.Errorf("blockfs: %s already exists", name)
		}
	}
	if uint32(len(v.entries)+1)*dirEntrySize > v.dev.BlockSize() {
		return nil, errors.New("blockfs: directory full")
	}
	start := v.nextStart()
	if start >= v.dev.BlockCount() {
		return nil, errors.New("blockfs: volume full")
	}
	v.entries = append(v.entries, devEntry{name: name, start: start})
	if err := v.writeDirectory(); err != nil {
		v.entries = v.entries[:len(v.entries)-1]
		return nil, err
	}
	return &devFile{vol: v, idx: len(v.entries) - 1}, nil
}

// Names implements Volume.
func (v *DevVolume) Names() ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	names := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		names = append(names, e.name)
	}
	return names, nil
}

// BlockSize implements Volume.
func (v *DevVolume) BlockSize() uint32 { return v.dev.BlockSize() }

func (v *DevVolume) nextStart() uint32 {
	if len(v.entries) == 0 {
		return 1
	}
	last := v.entries[len(v.entries)-1]
	return last.start + blocksFor(last.length, v.dev.BlockSize())
}

// writeDirectory serializes every entry into block 0. Caller holds v.mu.
func (v *DevVolume) writeDirectory() error {
	buf := make([]byte, v.dev.BlockSize())
	for i, e := range v.entries {
		raw := buf[i*dirEntrySize:]
		copy(raw, e.name)
		binary.BigEndian.PutUint32(raw[dirNameSize:], e.start)
		binary.BigEndian.PutUint32(raw[dirNameSize+4:], e.length)
	}
	return v.dev.Write(dirBlock, 0, buf)
}

// devFile appends into its entry's block run. A write stops at the end of
// the current block; callers retry with the remainder, the same contract a
// raw device write gives them.
type devFile struct {
	vol *DevVolume
	idx int
}

func (f *devFile) Write(p []byte) (int, error) {
	v := f.vol
	v.mu.Lock()
	defer v.mu.Unlock()

	e := &v.entries[f.idx]
	bs := v.dev.BlockSize()
	block := e.start + e.length/bs
	if block >= v.dev.BlockCount() {
		return 0, ErrOutOfRange
	}
	// A file created later owns the blocks past this one's run at creation.
	if f.idx+1 < len(v.entries) && block >= v.entries[f.idx+1].start {
		return 0, ErrOutOfRange
	}
	off := e.length % bs
	n := len(p)
	if max := int(bs - off); n > max {
		n = max
	}
	if err := v.dev.Write(block, off, p[:n]); err != nil {
		return 0, err
	}
	e.length += uint32(n)
	return n, nil
}

// Sync persists the directory, then forces the device down. Appended bytes
// are durable only once their length is in the directory.
func (f *devFile) Sync() error {
	v := f.vol
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.writeDirectory(); err != nil {
		return err
	}
	return v.dev.Sync()
}
