// Package mem models the shared memory modules that sit between the
// cores of the array.
package mem

import (
	"fmt"

	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/lock"
)

// Module is one memory module: a lock unit plus a byte region. A module
// is shared by its one or two horizontal owner tiles and reachable from
// its vertical users; every cross-tile discipline on the data region
// comes from the locks, the module itself adds none.
type Module struct {
	name  string
	x, y  int
	locks *lock.Unit
	data  []byte
}

// Name returns the name of the module.
func (m *Module) Name() string {
	return m.name
}

// X returns the lattice X coordinate of the module.
func (m *Module) X() int {
	return m.x
}

// Y returns the lattice Y coordinate of the module.
func (m *Module) Y() int {
	return m.y
}

// Lock returns lock device i of the module's lock unit.
func (m *Module) Lock(i int) *lock.Device {
	return m.locks.Lock(i)
}

// Data returns the module's data region. Callers coordinate access
// through the locks.
func (m *Module) Data() []byte {
	return m.data
}

// Builder builds memory modules.
type Builder struct {
	x, y     int
	dataSize int
}

// WithPosition sets the lattice coordinate of the module.
func (b Builder) WithPosition(x, y int) Builder {
	b.x = x
	b.y = y
	return b
}

// WithDataSize sets the size of the data region in bytes.
func (b Builder) WithDataSize(size int) Builder {
	b.dataSize = size
	return b
}

// Build creates a memory module.
func (b Builder) Build(name string) *Module {
	if b.dataSize < 0 {
		panic(fmt.Errorf("%w: data size %d", cgra.ErrOutOfRange, b.dataSize))
	}

	return &Module{
		name:  name,
		x:     b.x,
		y:     b.y,
		locks: lock.NewUnit(),
		data:  make([]byte, b.dataSize),
	}
}
