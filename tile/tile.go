// Package tile implements the execution context of one core tile:
// the task lifecycle, the neighbor memory accessors, and the barrier
// protocols.
package tile

import (
	"fmt"
	"sync"

	"github.com/sarchlab/tessera/alloc"
	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/mem"
	"github.com/sarchlab/tessera/sched"
	"github.com/sarchlab/tessera/stream"
)

// NumPorts is the number of stream port pairs of a tile, one per side.
const NumPorts = cgra.NumSides

// Tile is the execution context of one core. A tile runs at most one
// task at a time; the task blocks in lock acquires and port transfers
// exactly as a kernel on the modeled core would.
type Tile struct {
	name string
	x, y int
	geo  cgra.Geometry

	mems     [cgra.NumSides]*mem.Module
	inPorts  [cgra.NumSides]*stream.Port
	outPorts [cgra.NumSides]*stream.Port
	heap     *alloc.Arena
	exec     sched.Executor

	mu      sync.Mutex
	running bool
	done    chan error
}

// Name returns the name of the tile.
func (t *Tile) Name() string {
	return t.name
}

// X returns the X coordinate of the tile.
func (t *Tile) X() int {
	return t.x
}

// Y returns the Y coordinate of the tile.
func (t *Tile) Y() int {
	return t.y
}

// LinearID returns the row-major index of the tile.
func (t *Tile) LinearID() int {
	return t.geo.LinearID(t.x, t.y)
}

// Geometry returns the geometry of the array the tile belongs to.
func (t *Tile) Geometry() cgra.Geometry {
	return t.geo
}

// SingleTask submits work to the tile. It fails when a previous task
// has not been waited for yet. A panic inside work becomes the tile's
// failure, reported by Wait; it never takes the process down.
func (t *Tile) SingleTask(work func() error) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("%w: something is already running on tile (%d,%d)",
			cgra.ErrAlreadyRunning, t.x, t.y)
	}

	done := make(chan error, 1)
	t.running = true
	t.done = done
	t.mu.Unlock()

	t.exec.Launch(func() {
		done <- t.runTask(work)
	})

	return nil
}

func (t *Tile) runTask(work func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if e, ok := r.(error); ok {
			err = fmt.Errorf("tile (%d,%d): %w", t.x, t.y, e)
			return
		}
		err = fmt.Errorf("tile (%d,%d): %v", t.x, t.y, r)
	}()

	cgra.Trace("task start", "X", t.x, "Y", t.y)
	err = work()
	cgra.Trace("task done", "X", t.x, "Y", t.y)

	return err
}

// Wait blocks until the running task completes and returns its failure,
// if any. Waiting on an idle tile returns immediately. Wait is meant
// for the single owner that submitted the task.
func (t *Tile) Wait() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	done := t.done
	t.mu.Unlock()

	err := <-done

	t.mu.Lock()
	t.running = false
	t.mu.Unlock()

	return err
}

// Busy reports whether a task is running or waiting to be reaped.
func (t *Tile) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.running
}

// Mem returns the native memory module of the tile: the eastern one on
// even rows, the western one on odd rows. It always exists.
func (t *Tile) Mem() *mem.Module {
	return t.mems[t.geo.NativeSide(t.y)]
}

// MemSide returns the memory module on side s. Asking for a side the
// geometry does not provide is a configuration error and panics.
func (t *Tile) MemSide(s cgra.Side) *mem.Module {
	if s < 0 || s >= cgra.NumSides {
		panic("invalid side")
	}

	m := t.mems[s]
	if m == nil {
		panic(fmt.Errorf("%w: tile (%d,%d) has no %s memory module",
			cgra.ErrOutOfRange, t.x, t.y, s.Name()))
	}

	return m
}

// HasMemSide reports whether a memory module is wired on side s.
func (t *Tile) HasMemSide(s cgra.Side) bool {
	if s < 0 || s >= cgra.NumSides {
		panic("invalid side")
	}

	return t.mems[s] != nil
}

// MemNorth returns the module one lattice step to the North.
func (t *Tile) MemNorth() *mem.Module {
	return t.MemSide(cgra.North)
}

// MemSouth returns the module one lattice step to the South.
func (t *Tile) MemSouth() *mem.Module {
	return t.MemSide(cgra.South)
}

// MemEast returns the module on the eastern side.
func (t *Tile) MemEast() *mem.Module {
	return t.MemSide(cgra.East)
}

// MemWest returns the module on the western side.
func (t *Tile) MemWest() *mem.Module {
	return t.MemSide(cgra.West)
}

// HasMemNorth reports whether a northern module is wired.
func (t *Tile) HasMemNorth() bool {
	return t.HasMemSide(cgra.North)
}

// HasMemSouth reports whether a southern module is wired.
func (t *Tile) HasMemSouth() bool {
	return t.HasMemSide(cgra.South)
}

// HasMemEast reports whether an eastern module is wired.
func (t *Tile) HasMemEast() bool {
	return t.HasMemSide(cgra.East)
}

// HasMemWest reports whether a western module is wired.
func (t *Tile) HasMemWest() bool {
	return t.HasMemSide(cgra.West)
}

// Heap returns the tile's private allocator arena.
func (t *Tile) Heap() *alloc.Arena {
	if t.heap == nil {
		panic(fmt.Errorf("%w: tile (%d,%d) was built without a heap",
			cgra.ErrOutOfRange, t.x, t.y))
	}

	return t.heap
}

// HasHeap reports whether the tile carries a heap arena.
func (t *Tile) HasHeap() bool {
	return t.heap != nil
}

// In returns input port i. Ports map one-to-one onto sides.
func (t *Tile) In(i int) *stream.Port {
	return t.InSide(t.translatePort(i))
}

// Out returns output port i. Ports map one-to-one onto sides.
func (t *Tile) Out(i int) *stream.Port {
	return t.OutSide(t.translatePort(i))
}

// InSide returns the input port on side s.
func (t *Tile) InSide(s cgra.Side) *stream.Port {
	p := t.inPorts[s]
	if p == nil {
		panic(fmt.Errorf("%w: tile (%d,%d) input port %s is not connected",
			cgra.ErrOutOfRange, t.x, t.y, s.Name()))
	}

	return p
}

// OutSide returns the output port on side s.
func (t *Tile) OutSide(s cgra.Side) *stream.Port {
	p := t.outPorts[s]
	if p == nil {
		panic(fmt.Errorf("%w: tile (%d,%d) output port %s is not connected",
			cgra.ErrOutOfRange, t.x, t.y, s.Name()))
	}

	return p
}

// ConnectIn wires the input port on side s. The composition layer calls
// it while building the device.
func (t *Tile) ConnectIn(s cgra.Side, p *stream.Port) {
	t.inPorts[s] = p
}

// ConnectOut wires the output port on side s.
func (t *Tile) ConnectOut(s cgra.Side, p *stream.Port) {
	t.outPorts[s] = p
}

func (t *Tile) translatePort(i int) cgra.Side {
	if i < 0 || i >= NumPorts {
		panic(fmt.Errorf("%w: %d is not a valid port number between 0 and %d",
			cgra.ErrOutOfRange, i, NumPorts-1))
	}

	return cgra.Side(i)
}

func (t *Tile) String() string {
	return fmt.Sprintf("Tile(%d, %d)", t.x, t.y)
}
