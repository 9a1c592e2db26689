package datalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mookiedog/umod4-sub001/internal/blockfs"
	"github.com/mookiedog/umod4-sub001/internal/logwriter"
	"github.com/mookiedog/umod4-sub001/internal/ringbuf"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := New(Options{
		BufferBytes:  8192,
		PollInterval: 2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return l
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLoggerEndToEnd(t *testing.T) {
	dir := t.TempDir()
	l := newTestLogger(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	vol, err := blockfs.OpenDir(dir, 512)
	if err != nil {
		t.Fatalf("open volume: %v", err)
	}
	l.Bridge().OnMediaReady(vol)

	// Mix both producer framings, single producer, and track the exact
	// byte stream they should produce.
	var expected []byte
	for i := 0; len(expected) < 512; i++ {
		if i%4 == 0 {
			word, ok := ringbuf.PackWord(0x01, []byte{byte(i), byte(i >> 8)})
			if !ok {
				t.Fatalf("pack word")
			}
			if !l.LogWord(word) {
				t.Fatalf("LogWord rejected at %d", i)
			}
			expected = append(expected, 2<<6|0x01, byte(i), byte(i>>8))
		} else {
			payload := []byte{byte(i), byte(i), byte(i), byte(i)}
			if !l.Log(0x42, payload) {
				t.Fatalf("Log rejected at %d", i)
			}
			expected = append(expected, 0x42)
			expected = append(expected, payload...)
		}
	}

	waitFor(t, "log file to appear", func() bool {
		return l.CurrentLogName() != ""
	})
	name := l.CurrentLogName()

	waitFor(t, "durable window on disk", func() bool {
		b, err := os.ReadFile(filepath.Join(dir, name))
		return err == nil && len(b) >= 512
	})
	got, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !bytes.Equal(got[:512], expected[:512]) {
		t.Fatalf("log file bytes diverge from submitted records")
	}

	s := l.Stats()
	if s.Ring.AcceptedRecords == 0 || s.Writer.BytesWritten < 512 {
		t.Fatalf("stats not tracking: %+v", s)
	}
	if s.State == logwriter.StateUnmounted {
		t.Fatalf("writer should be past Unmounted")
	}
}

func TestPumpFramesCompanionStream(t *testing.T) {
	l := newTestLogger(t)

	src := []byte{1, 2, 3, 4, 5, 6, 7}
	if err := l.Pump(context.Background(), bytes.NewReader(src), 0x05); err != nil {
		t.Fatalf("pump: %v", err)
	}

	// 7 bytes become two 3-byte word records and one 1-byte record.
	first, second := l.ring.Drain(l.ring.Capacity())
	if second != nil {
		t.Fatalf("unexpected wrap in fresh ring")
	}
	want := []byte{
		3<<6 | 0x05, 1, 2, 3,
		3<<6 | 0x05, 4, 5, 6,
		1<<6 | 0x05, 7,
	}
	if !bytes.Equal(first, want) {
		t.Fatalf("pumped frames = %v, want %v", first, want)
	}
}

func TestPumpStopsOnCancel(t *testing.T) {
	l := newTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() { r.Close(); w.Close() })
	if err := l.Pump(ctx, r, 0x05); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestLoggerEndToEndOnDeviceImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.img")
	dev, err := blockfs.OpenFileDevice(path, 512, 64)
	if err != nil {
		t.Fatalf("open device: %v", err)
	}
	t.Cleanup(func() { _ = dev.Close() })
	vol, err := blockfs.OpenDevice(dev)
	if err != nil {
		t.Fatalf("open volume: %v", err)
	}

	l := newTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	l.Bridge().OnMediaReady(vol)

	var expected []byte
	for len(expected) < 512 {
		payload := []byte{byte(len(expected)), byte(len(expected) >> 8), 0, 1}
		if !l.Log(0x21, payload) {
			t.Fatalf("log rejected at %d bytes", len(expected))
		}
		expected = append(expected, 0x21)
		expected = append(expected, payload...)
	}

	waitFor(t, "first window synced to the device", func() bool {
		s := l.Stats()
		return s.Writer.Syncs.Count >= 1 && s.Writer.BytesWritten >= 512
	})
	if name := l.CurrentLogName(); name != "log_1.dat" {
		t.Fatalf("current log name %q", name)
	}

	// Data blocks start right after the directory block.
	got := make([]byte, 512)
	if err := dev.Read(1, 0, got); err != nil {
		t.Fatalf("read device: %v", err)
	}
	if !bytes.Equal(got, expected[:512]) {
		t.Fatalf("device bytes diverge from submitted records")
	}
}
