package blockfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirVolume is a Volume backed by an ordinary OS directory, the daemon's
// stand-in for the removable flash filesystem: each log file is a real file
// inside the mount directory, with a configured logical block size driving
// flush alignment.
type DirVolume struct {
	dir       string
	blockSize uint32
}

// OpenDir opens a directory-backed volume. The directory must already exist;
// a missing directory means the media is not mounted.
func OpenDir(dir string, blockSize uint32) (*DirVolume, error) {
	if blockSize < MinBlockSize {
		return nil, fmt.Errorf("blockfs: block size %d below minimum %d", blockSize, MinBlockSize)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("blockfs: open volume: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("blockfs: open volume: %s is not a directory", dir)
	}
	return &DirVolume{dir: dir, blockSize: blockSize}, nil
}

// Create implements Volume.
func (v *DirVolume) Create(name string) (File, error) {
	f, err := os.OpenFile(filepath.Join(v.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Names implements Volume.
func (v *DirVolume) Names() ([]string, error) {
	entries, err := os.ReadDir(v.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// BlockSize implements Volume.
func (v *DirVolume) BlockSize() uint32 { return v.blockSize }

// Dir returns the backing directory path.
func (v *DirVolume) Dir() string { return v.dir }
