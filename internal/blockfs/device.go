package blockfs

import (
	"errors"
	"io"
)

var (
	// ErrOutOfRange reports an access outside the device geometry.
	ErrOutOfRange = errors.New("blockfs: access outside device geometry")
)

// Device is the raw block interface supplied by an external block-structured
// storage stack. The log pipeline consumes it; it never implements the
// underlying protocol.
type Device interface {
	// Read fills p from the given block starting at offset within it.
	Read(block, offset uint32, p []byte) error
	// Write stores p into the given block starting at offset within it.
	Write(block, offset uint32, p []byte) error
	// Erase resets a whole block. May be a no-op depending on the media.
	Erase(block uint32) error
	// Sync forces previously written bytes to be safe against power loss.
	Sync() error

	BlockSize() uint32
	BlockCount() uint32
}

// File is the append surface of one open log file.
type File interface {
	io.Writer
	// Sync makes previously written bytes durable.
	Sync() error
}

// Volume is the file-level surface the writer task consumes. It is supplied
// by the hot-plug manager when media appears.
type Volume interface {
	// Create makes a new file for appending. The name must not exist.
	Create(name string) (File, error)
	// Names lists the entry names present on the volume.
	Names() ([]string, error)
	// BlockSize reports the underlying device's block size in bytes.
	BlockSize() uint32
}
