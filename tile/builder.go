package tile

import (
	"fmt"

	"github.com/sarchlab/tessera/alloc"
	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/mem"
	"github.com/sarchlab/tessera/sched"
)

// Builder builds tiles.
type Builder struct {
	geo      cgra.Geometry
	x, y     int
	heapSize int
	exec     sched.Executor
	mems     [cgra.NumSides]*mem.Module
}

// WithGeometry sets the geometry of the array the tile belongs to.
func (b Builder) WithGeometry(g cgra.Geometry) Builder {
	b.geo = g
	return b
}

// WithPosition sets the coordinate of the tile.
func (b Builder) WithPosition(x, y int) Builder {
	b.x = x
	b.y = y
	return b
}

// WithMemory wires the memory module on side s.
func (b Builder) WithMemory(s cgra.Side, m *mem.Module) Builder {
	b.mems[s] = m
	return b
}

// WithHeapSize sets the size of the tile's private heap arena in bytes.
// Zero builds the tile without a heap.
func (b Builder) WithHeapSize(size int) Builder {
	b.heapSize = size
	return b
}

// WithExecutor sets the execution backend. The default runs tasks on
// plain goroutines.
func (b Builder) WithExecutor(e sched.Executor) Builder {
	b.exec = e
	return b
}

// Build creates a tile. The native memory module must be wired; modules
// on sides the geometry does not provide are rejected.
func (b Builder) Build(name string) *Tile {
	if err := b.geo.Validate(b.x, b.y); err != nil {
		panic(err)
	}

	native := b.geo.NativeSide(b.y)
	if b.mems[native] == nil {
		panic(fmt.Errorf("%w: tile (%d,%d) is missing its native %s module",
			cgra.ErrOutOfRange, b.x, b.y, native.Name()))
	}

	for s := cgra.Side(0); s < cgra.NumSides; s++ {
		if b.mems[s] != nil && !b.geo.HasMem(b.x, b.y, s) {
			panic(fmt.Errorf("%w: tile (%d,%d) cannot have a %s module",
				cgra.ErrOutOfRange, b.x, b.y, s.Name()))
		}
	}

	t := &Tile{
		name: name,
		x:    b.x,
		y:    b.y,
		geo:  b.geo,
		mems: b.mems,
		exec: b.exec,
	}

	if t.exec == nil {
		t.exec = sched.GoroutineExecutor{}
	}

	if b.heapSize > 0 {
		arena, err := alloc.New(make([]byte, b.heapSize))
		if err != nil {
			panic(err)
		}
		t.heap = arena
	}

	return t
}
