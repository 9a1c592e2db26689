package blockfs

import (
	"errors"
	"fmt"
	"os"
)

// FileDevice is a Device backed by a single regular file partitioned into
// fixed-size blocks. It is the reference implementation used by tests and by
// integrators who want a device image instead of real media.
type FileDevice struct {
	f          *os.File
	blockSize  uint32
	blockCount uint32
}

// OpenFileDevice creates or opens a device image at path with the given
// geometry, growing the file to the full device size if needed.
func OpenFileDevice(path string, blockSize, blockCount uint32) (*FileDevice, error) {
	if blockSize < MinBlockSize {
		return nil, fmt.Errorf("blockfs: block size %d below minimum %d", blockSize, MinBlockSize)
	}
	if blockCount == 0 {
		return nil, errors.New("blockfs: block count must be non-zero")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("blockfs: open device image: %w", err)
	}
	if err := f.Truncate(int64(blockSize) * int64(blockCount)); err != nil {
		f.Close()
		return nil, fmt.Errorf("blockfs: size device image: %w", err)
	}
	return &FileDevice{f: f, blockSize: blockSize, blockCount: blockCount}, nil
}

func (d *FileDevice) check(block, offset uint32, n int) error {
	if block >= d.blockCount || offset >= d.blockSize || uint32(n) > d.blockSize-offset {
		return ErrOutOfRange
	}
	return nil
}

func (d *FileDevice) pos(block, offset uint32) int64 {
	return int64(block)*int64(d.blockSize) + int64(offset)
}

// Read implements Device.
func (d *FileDevice) Read(block, offset uint32, p []byte) error {
	if err := d.check(block, offset, len(p)); err != nil {
		return err
	}
	_, err := d.f.ReadAt(p, d.pos(block, offset))
	return err
}

// Write implements Device.
func (d *FileDevice) Write(block, offset uint32, p []byte) error {
	if err := d.check(block, offset, len(p)); err != nil {
		return err
	}
	_, err := d.f.WriteAt(p, d.pos(block, offset))
	return err
}

// Erase implements Device. The block is reset to the erased flash pattern.
func (d *FileDevice) Erase(block uint32) error {
	if block >= d.blockCount {
		return ErrOutOfRange
	}
	blank := make([]byte, d.blockSize)
	for i := range blank {
		blank[i] = 0xff
	}
	_, err := d.f.WriteAt(blank, d.pos(block, 0))
	return err
}

// Sync implements Device.
func (d *FileDevice) Sync() error { return d.f.Sync() }

// BlockSize implements Device.
func (d *FileDevice) BlockSize() uint32 { return d.blockSize }

// BlockCount implements Device.
func (d *FileDevice) BlockCount() uint32 { return d.blockCount }

// Close releases the backing file.
func (d *FileDevice) Close() error { return d.f.Close() }
