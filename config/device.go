package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/mem"
	"github.com/sarchlab/tessera/stream"
	"github.com/sarchlab/tessera/tile"
)

// A Device is a CGRA device: the full array of tiles and memory
// modules, wired and ready to run kernels. Tiles and modules are
// indexed [y][x].
type Device struct {
	name string
	geo  cgra.Geometry

	mods  [][]*mem.Module
	tiles [][]*tile.Tile

	mu      sync.Mutex
	kernels [][]tile.Kernel
	running bool
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// Geometry returns the geometry of the device.
func (d *Device) Geometry() cgra.Geometry {
	return d.geo
}

// GetSize returns the width and height of the device.
func (d *Device) GetSize() (width, height int) {
	return d.geo.Width, d.geo.Height
}

// GetTile returns the tile at the given coordinate.
func (d *Device) GetTile(x, y int) *tile.Tile {
	if err := d.geo.Validate(x, y); err != nil {
		panic(err)
	}

	return d.tiles[y][x]
}

// GetMem returns the memory module at the given lattice point.
func (d *Device) GetMem(x, y int) *mem.Module {
	if err := d.geo.Validate(x, y); err != nil {
		panic(err)
	}

	return d.mods[y][x]
}

// Owners returns the one or two tiles that own the module at (x, y)
// horizontally, the native owner first.
func (d *Device) Owners(x, y int) []*tile.Tile {
	if err := d.geo.Validate(x, y); err != nil {
		panic(err)
	}

	owners := []*tile.Tile{d.tiles[y][x]}

	// The second owner sits across the module: to the East on even
	// rows, to the West on odd ones.
	ox := x + 1
	if y&1 == 1 {
		ox = x - 1
	}
	if d.geo.Contains(ox, y) {
		owners = append(owners, d.tiles[y][ox])
	}

	return owners
}

// SetKernel maps a kernel onto the tile at (x, y). Unmapped tiles stay
// idle during Run. The mapping is meant to be built once, before the
// first Run.
func (d *Device) SetKernel(x, y int, k tile.Kernel) error {
	if err := d.geo.Validate(x, y); err != nil {
		return err
	}

	d.mu.Lock()
	d.kernels[y][x] = k
	d.mu.Unlock()

	return nil
}

// Run submits every mapped kernel to its tile and joins the whole
// array. Per-tile failures are collected and returned together; they
// never abort the other tiles or the process.
func (d *Device) Run() error {
	return d.run(nil)
}

// RunAll runs one kernel on every tile of the array, each invocation
// receiving its own tile handle.
func (d *Device) RunAll(k tile.Kernel) error {
	return d.run(k)
}

func (d *Device) run(override tile.Kernel) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("%w: device %s", cgra.ErrAlreadyRunning, d.name)
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	runID := sim.GetIDGenerator().Generate()
	cgra.Trace("device run", "Device", d.name, "RunID", runID)

	var errs []error

	for y := 0; y < d.geo.Height; y++ {
		for x := 0; x < d.geo.Width; x++ {
			k := override
			if k == nil {
				d.mu.Lock()
				k = d.kernels[y][x]
				d.mu.Unlock()
			}
			if k == nil {
				continue
			}

			t := d.tiles[y][x]
			kernel := k
			if err := t.SingleTask(func() error {
				return kernel.Run(t)
			}); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for y := 0; y < d.geo.Height; y++ {
		for x := 0; x < d.geo.Width; x++ {
			if err := d.tiles[y][x].Wait(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	cgra.Trace("device run done",
		"Device", d.name, "RunID", runID, "Failures", len(errs))

	return errors.Join(errs...)
}

// GetSideInPorts returns the boundary input ports on the given side of
// the device, indexed along the edge. FeedIn pushes into these.
func (d *Device) GetSideInPorts(side cgra.Side, portRange [2]int) []*stream.Port {
	return d.sidePorts(side, portRange, func(t *tile.Tile) *stream.Port {
		return t.InSide(side)
	})
}

// GetSideOutPorts returns the boundary output ports on the given side
// of the device. Collect drains these.
func (d *Device) GetSideOutPorts(side cgra.Side, portRange [2]int) []*stream.Port {
	return d.sidePorts(side, portRange, func(t *tile.Tile) *stream.Port {
		return t.OutSide(side)
	})
}

func (d *Device) sidePorts(
	side cgra.Side,
	portRange [2]int,
	pick func(t *tile.Tile) *stream.Port,
) []*stream.Port {
	edgeLen := d.geo.Width
	if side == cgra.East || side == cgra.West {
		edgeLen = d.geo.Height
	}

	if portRange[0] < 0 || portRange[1] > edgeLen ||
		portRange[0] > portRange[1] {
		panic(fmt.Errorf("%w: port range [%d,%d) on the %s edge of length %d",
			cgra.ErrOutOfRange,
			portRange[0], portRange[1], side.Name(), edgeLen))
	}

	ports := make([]*stream.Port, 0, portRange[1]-portRange[0])

	for i := portRange[0]; i < portRange[1]; i++ {
		switch side {
		case cgra.North:
			ports = append(ports, pick(d.tiles[d.geo.Height-1][i]))
		case cgra.South:
			ports = append(ports, pick(d.tiles[0][i]))
		case cgra.West:
			ports = append(ports, pick(d.tiles[i][0]))
		case cgra.East:
			ports = append(ports, pick(d.tiles[i][d.geo.Width-1]))
		default:
			panic("invalid side")
		}
	}

	return ports
}
