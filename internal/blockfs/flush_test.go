package blockfs

import "testing"

func TestFlushWindowFirstBlock(t *testing.T) {
	cases := []struct {
		offset uint32
		want   uint32
	}{
		{0, 512},
		{1, 511},
		{100, 412},
		{511, 1},
	}
	for _, c := range cases {
		if got := FlushWindow(c.offset, 512); got != c.want {
			t.Fatalf("FlushWindow(%d, 512) = %d, want %d", c.offset, got, c.want)
		}
	}
}

func TestFlushWindowSecondBlockCarriesPointerOverhead(t *testing.T) {
	// The first byte of the second block sits behind one 4-byte pointer word,
	// so the window is 508, not 512.
	if got := FlushWindow(512, 512); got != 508 {
		t.Fatalf("FlushWindow(512, 512) = %d, want 508", got)
	}
}

func TestFlushWindowAlwaysPositive(t *testing.T) {
	for _, blockSize := range []uint32{256, 512, 4096} {
		offset := uint32(0)
		for i := 0; i < 20000; i++ {
			w := FlushWindow(offset, blockSize)
			if w == 0 {
				t.Fatalf("FlushWindow(%d, %d) = 0", offset, blockSize)
			}
			if w > blockSize {
				t.Fatalf("FlushWindow(%d, %d) = %d exceeds block size", offset, blockSize, w)
			}
			offset += w
		}
	}
}

func TestFlushWindowSequentialWriterNeverSplitsBlocks(t *testing.T) {
	// A monotonically advancing writer that always accumulates exactly one
	// window should find every subsequent window at least as large as one
	// data byte and never be asked to sync twice inside the window it was
	// just given: any offset strictly inside (offset, offset+window) keeps
	// a window reaching at least the same boundary.
	const blockSize = 512
	offset := uint32(0)
	for i := 0; i < 1000; i++ {
		w := FlushWindow(offset, blockSize)
		boundary := offset + w
		for _, mid := range []uint32{offset + 1, offset + w/2, boundary - 1} {
			if mid <= offset || mid >= boundary {
				continue
			}
			pw := FlushWindow(mid, blockSize)
			if mid+pw < boundary {
				t.Fatalf("window from %d ends at %d, inside the window %d..%d",
					mid, mid+pw, offset, boundary)
			}
		}
		offset = boundary
	}
}
