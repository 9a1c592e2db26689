package blockfs

import "math/bits"

// ptrWordSize is the size of one block pointer in the flash filesystem's
// chained-pointer file layout.
const ptrWordSize = 4

// MinBlockSize is the smallest block size the chained-pointer layout
// supports: two leading pointer words plus at least one data byte. Volume
// constructors reject anything smaller, so FlushWindow never sees a geometry
// it cannot divide by.
const MinBlockSize = 2*ptrWordSize + 1

// FlushWindow returns how many bytes a log file at the given offset may
// accumulate before the next durability sync, so that syncs always land on
// the boundary of the block containing the offset and never force a mid-block
// rewrite.
//
// The first block of a file stores pure data. Every later block reserves
// pointer words at its start; block i carries popcount-driven pointer
// overhead, and the block index for an offset is recovered with the same
// popcount arithmetic the filesystem uses for its chained layout. The formula
// is specific to that layout: a port to a different block store must
// substitute that store's own rule.
//
// The result is always strictly positive for offsets within a valid file.
func FlushWindow(offset, blockSize uint32) uint32 {
	if offset < blockSize {
		return blockSize - offset
	}

	// Data bytes per chained block, excluding the two leading pointer words
	// every non-head block carries at minimum.
	b := blockSize - 2*ptrWordSize

	i := offset / b
	if i > 0 {
		i = (offset - ptrWordSize*(popc(i-1)+2)) / b
	}
	intra := offset - b*i - ptrWordSize*popc(i)
	return blockSize - intra
}

func popc(v uint32) uint32 {
	return uint32(bits.OnesCount32(v))
}
