// Package alloc implements the free-list allocator that manages a tile's
// private heap arena.
//
// Blocks carry their headers inside the arena bytes, so the union of
// blocks always tiles the arena exactly. An Arena belongs to a single
// tile context and is not safe for concurrent use.
package alloc

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/tessera/cgra"
)

const (
	// minAllocSize is the smallest payload worth splitting a block for.
	minAllocSize = 8

	// allocAlign is the alignment every payload size is rounded up to.
	allocAlign = 4

	// headerSize is the in-band block header: a next-block offset and a
	// packed size/in-use word, both little-endian uint32.
	headerSize = 8
)

const inUseBit = 1 << 31

// Arena is one fixed heap region managed as an address-ordered list of
// blocks. Offsets into the region are the pointer currency; offset 0 is
// the first header, payloads start at offset headerSize.
type Arena struct {
	buf []byte
}

// New formats buf as a single free block spanning the whole arena.
func New(buf []byte) (*Arena, error) {
	if len(buf) < headerSize+minAllocSize {
		return nil, fmt.Errorf(
			"%w: arena of %d bytes, need at least %d",
			cgra.ErrOutOfRange, len(buf), headerSize+minAllocSize)
	}

	a := &Arena{buf: buf}
	a.writeHeader(0, 0, uint32(len(buf))-headerSize, false)

	return a, nil
}

// Size returns the arena size in bytes, headers included.
func (a *Arena) Size() uint32 {
	return uint32(len(a.buf))
}

// TryAlloc carves a block for size bytes, first fit. It returns the
// payload offset, or false when no free block is large enough.
func (a *Arena) TryAlloc(size uint32) (uint32, bool) {
	size = (size + allocAlign - 1) &^ (allocAlign - 1)

	for h, ok := uint32(0), true; ok; h, ok = a.nextOf(h) {
		next, blockSize, inUse := a.readHeader(h)
		if inUse || blockSize < size {
			continue
		}

		if blockSize >= size+headerSize+minAllocSize {
			// Split: the remainder becomes a new free block right
			// after the allocated payload.
			nh := h + headerSize + size
			a.writeHeader(nh, next, blockSize-size-headerSize, false)
			a.writeHeader(h, nh, size, true)
		} else {
			a.writeHeader(h, next, blockSize, true)
		}

		return h + headerSize, true
	}

	return 0, false
}

// Alloc is TryAlloc, except exhaustion is fatal to the caller.
func (a *Arena) Alloc(size uint32) uint32 {
	off, ok := a.TryAlloc(size)
	if !ok {
		panic(fmt.Errorf("%w: cannot allocate %d bytes, %d free in %d-byte arena",
			cgra.ErrOutOfMemory, size, a.FreeBytes(), len(a.buf)))
	}

	return off
}

// Free returns the block whose payload starts at off to the free list.
// Adjacent free blocks are not merged. Offsets that do not address a
// block payload panic.
func (a *Arena) Free(off uint32) {
	h, ok := a.headerOf(off)
	if !ok {
		panic(fmt.Errorf("%w: %d is not an allocated block offset",
			cgra.ErrOutOfRange, off))
	}

	next, size, _ := a.readHeader(h)
	a.writeHeader(h, next, size, false)
}

// Bytes returns the payload of the block at off.
func (a *Arena) Bytes(off uint32) []byte {
	h, ok := a.headerOf(off)
	if !ok {
		panic(fmt.Errorf("%w: %d is not an allocated block offset",
			cgra.ErrOutOfRange, off))
	}

	_, size, _ := a.readHeader(h)

	return a.buf[off : off+size]
}

// BlockCount returns the number of blocks, free and allocated.
func (a *Arena) BlockCount() int {
	count := 0
	for h, ok := uint32(0), true; ok; h, ok = a.nextOf(h) {
		count++
	}

	return count
}

// FreeBytes sums the payload capacity of all free blocks.
func (a *Arena) FreeBytes() uint32 {
	var total uint32
	for h, ok := uint32(0), true; ok; h, ok = a.nextOf(h) {
		_, size, inUse := a.readHeader(h)
		if !inUse {
			total += size
		}
	}

	return total
}

// LargestFree returns the payload capacity of the largest free block.
func (a *Arena) LargestFree() uint32 {
	var largest uint32
	for h, ok := uint32(0), true; ok; h, ok = a.nextOf(h) {
		_, size, inUse := a.readHeader(h)
		if !inUse && size > largest {
			largest = size
		}
	}

	return largest
}

// headerOf finds the header whose payload starts at off.
func (a *Arena) headerOf(off uint32) (uint32, bool) {
	for h, ok := uint32(0), true; ok; h, ok = a.nextOf(h) {
		if h+headerSize == off {
			return h, true
		}
	}

	return 0, false
}

// nextOf steps to the next header, reporting false past the last one.
func (a *Arena) nextOf(h uint32) (uint32, bool) {
	next, _, _ := a.readHeader(h)
	if next == 0 {
		return 0, false
	}

	return next, true
}

func (a *Arena) readHeader(h uint32) (next, size uint32, inUse bool) {
	next = binary.LittleEndian.Uint32(a.buf[h:])
	word := binary.LittleEndian.Uint32(a.buf[h+4:])

	return next, word &^ inUseBit, word&inUseBit != 0
}

func (a *Arena) writeHeader(h, next, size uint32, inUse bool) {
	word := size
	if inUse {
		word |= inUseBit
	}

	binary.LittleEndian.PutUint32(a.buf[h:], next)
	binary.LittleEndian.PutUint32(a.buf[h+4:], word)
}
