package blockfs

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func openTestVolume(t *testing.T, blockCount uint32) (*DevVolume, *FileDevice, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "card.img")
	dev, err := OpenFileDevice(path, 512, blockCount)
	if err != nil {
		t.Fatalf("open device: %v", err)
	}
	t.Cleanup(func() { _ = dev.Close() })
	vol, err := OpenDevice(dev)
	if err != nil {
		t.Fatalf("open volume: %v", err)
	}
	return vol, dev, path
}

// appendAll drives File.Write the way the writer task does: retry with the
// remainder until the span is fully accepted.
func appendAll(t *testing.T, f File, p []byte) {
	t.Helper()
	for len(p) > 0 {
		n, err := f.Write(p)
		if err != nil {
			t.Fatalf("write: %v", err)
		}
		p = p[n:]
	}
}

func TestDevVolumeAppendAndRemount(t *testing.T) {
	vol, dev, path := openTestVolume(t, 16)

	f, err := vol.Create("log_1.dat")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	data := make([]byte, 600)
	for i := range data {
		data[i] = byte(i)
	}
	appendAll(t, f, data)
	if err := f.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	_ = dev.Close()

	// Remount from the image alone.
	dev2, err := OpenFileDevice(path, 512, 16)
	if err != nil {
		t.Fatalf("reopen device: %v", err)
	}
	t.Cleanup(func() { _ = dev2.Close() })
	vol2, err := OpenDevice(dev2)
	if err != nil {
		t.Fatalf("remount: %v", err)
	}
	names, err := vol2.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 1 || names[0] != "log_1.dat" {
		t.Fatalf("names = %v", names)
	}
	if got := vol2.entries[0].length; got != 600 {
		t.Fatalf("persisted length %d, want 600", got)
	}

	// The file's bytes straddle data blocks 1 and 2.
	got := make([]byte, 600)
	if err := dev2.Read(1, 0, got[:512]); err != nil {
		t.Fatalf("read block 1: %v", err)
	}
	if err := dev2.Read(2, 0, got[512:]); err != nil {
		t.Fatalf("read block 2: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("on-device bytes diverge from appended stream")
	}
}

func TestDevVolumeSequentialAllocation(t *testing.T) {
	vol, _, _ := openTestVolume(t, 16)

	f1, err := vol.Create("log_1.dat")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	appendAll(t, f1, make([]byte, 600))
	if err := f1.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if _, err := vol.Create("log_2.dat"); err != nil {
		t.Fatalf("create second: %v", err)
	}
	// The first file spans blocks 1-2, so the second starts at 3.
	if got := vol.entries[1].start; got != 3 {
		t.Fatalf("second file starts at block %d, want 3", got)
	}

	// The abandoned first handle must not grow into the second file's run:
	// it may fill the rest of block 2, then nothing more.
	n, err := f1.Write(make([]byte, 512))
	if err != nil {
		t.Fatalf("fill own run: %v", err)
	}
	if n != 424 {
		t.Fatalf("accepted %d bytes, want 424", n)
	}
	if _, err := f1.Write([]byte{0}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("write past the run: got %v, want ErrOutOfRange", err)
	}
}

func TestDevVolumeRejectsBadNames(t *testing.T) {
	vol, _, _ := openTestVolume(t, 16)
	if _, err := vol.Create("log_1.dat"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := vol.Create("log_1.dat"); err == nil {
		t.Fatalf("expected error creating existing file")
	}
	if _, err := vol.Create(""); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := vol.Create("a_name_much_longer_than_a_directory_slot.dat"); err == nil {
		t.Fatalf("expected error for oversized name")
	}
}

func TestDevVolumeFullDevice(t *testing.T) {
	vol, _, _ := openTestVolume(t, 2)

	f, err := vol.Create("log_1.dat")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	appendAll(t, f, make([]byte, 512))
	if _, err := f.Write([]byte{0}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("write past the device: got %v, want ErrOutOfRange", err)
	}
	if _, err := vol.Create("log_2.dat"); err == nil {
		t.Fatalf("expected error creating a file with no free blocks")
	}
}

func TestDevVolumeMountsErasedMediaEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.img")
	dev, err := OpenFileDevice(path, 512, 8)
	if err != nil {
		t.Fatalf("open device: %v", err)
	}
	t.Cleanup(func() { _ = dev.Close() })
	if err := dev.Erase(0); err != nil {
		t.Fatalf("erase: %v", err)
	}

	vol, err := OpenDevice(dev)
	if err != nil {
		t.Fatalf("open volume: %v", err)
	}
	names, err := vol.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("erased media should mount empty, got %v", names)
	}
}
