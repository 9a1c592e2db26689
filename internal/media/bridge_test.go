package media

import (
	"testing"

	"github.com/mookiedog/umod4-sub001/internal/blockfs"
)

func TestBridgePublishAndClear(t *testing.T) {
	b := NewBridge()
	if b.Volume() != nil {
		t.Fatalf("fresh bridge should have no media")
	}

	vol, err := blockfs.OpenDir(t.TempDir(), 512)
	if err != nil {
		t.Fatalf("open volume: %v", err)
	}
	b.OnMediaReady(vol)
	if b.Volume() == nil {
		t.Fatalf("volume not published")
	}

	b.SetCurrentLogName("log_3.dat")
	if got := b.CurrentLogName(); got != "log_3.dat" {
		t.Fatalf("current log name %q", got)
	}

	b.OnMediaRemoved()
	if b.Volume() != nil {
		t.Fatalf("volume not cleared")
	}
	if got := b.CurrentLogName(); got != "" {
		t.Fatalf("log name should clear with the media, got %q", got)
	}
}
