// Package config composes CGRA devices: it instantiates the memory
// modules and tiles of an array, wires the neighbor references per the
// row-parity rules, and connects the stream ports.
package config

import (
	"fmt"

	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/mem"
	"github.com/sarchlab/tessera/sched"
	"github.com/sarchlab/tessera/stream"
	"github.com/sarchlab/tessera/tile"
)

// Default component sizes, used when the builder leaves them unset.
const (
	DefaultMemSize = 4096
	DefaultPortCap = 4
)

// DeviceBuilder can build CGRA devices.
type DeviceBuilder struct {
	width, height int
	memSize       int
	heapSize      int
	portCap       int
	exec          sched.Executor
}

// WithWidth sets the width of the CGRA mesh.
func (d DeviceBuilder) WithWidth(width int) DeviceBuilder {
	d.width = width
	return d
}

// WithHeight sets the height of the CGRA mesh.
func (d DeviceBuilder) WithHeight(height int) DeviceBuilder {
	d.height = height
	return d
}

// WithMemSize sets the data region size of every memory module in
// bytes. The default is DefaultMemSize.
func (d DeviceBuilder) WithMemSize(size int) DeviceBuilder {
	d.memSize = size
	return d
}

// WithHeapSize sets the private heap arena size of every tile in
// bytes. Zero, the default, builds tiles without heaps.
func (d DeviceBuilder) WithHeapSize(size int) DeviceBuilder {
	d.heapSize = size
	return d
}

// WithPortCapacity sets the word capacity of every stream port. The
// default is DefaultPortCap.
func (d DeviceBuilder) WithPortCapacity(capacity int) DeviceBuilder {
	d.portCap = capacity
	return d
}

// WithExecutor sets the execution backend of every tile. The default
// runs tasks on plain goroutines.
func (d DeviceBuilder) WithExecutor(e sched.Executor) DeviceBuilder {
	d.exec = e
	return d
}

// Build creates a CGRA device.
func (d DeviceBuilder) Build(name string) *Device {
	geo, err := cgra.NewGeometry(d.width, d.height)
	if err != nil {
		panic(err)
	}

	if d.memSize == 0 {
		d.memSize = DefaultMemSize
	}
	if d.portCap == 0 {
		d.portCap = DefaultPortCap
	}

	dev := &Device{
		name:    name,
		geo:     geo,
		mods:    make([][]*mem.Module, d.height),
		tiles:   make([][]*tile.Tile, d.height),
		kernels: make([][]tile.Kernel, d.height),
	}

	for y := 0; y < d.height; y++ {
		dev.mods[y] = make([]*mem.Module, d.width)
		for x := 0; x < d.width; x++ {
			dev.mods[y][x] = mem.Builder{}.
				WithPosition(x, y).
				WithDataSize(d.memSize).
				Build(fmt.Sprintf("%s.Mem_%d_%d", name, x, y))
		}
	}

	for y := 0; y < d.height; y++ {
		dev.tiles[y] = make([]*tile.Tile, d.width)
		dev.kernels[y] = make([]tile.Kernel, d.width)
		for x := 0; x < d.width; x++ {
			b := tile.Builder{}.
				WithGeometry(geo).
				WithPosition(x, y).
				WithHeapSize(d.heapSize).
				WithExecutor(d.exec)

			for s := cgra.Side(0); s < cgra.NumSides; s++ {
				if geo.HasMem(x, y, s) {
					mx, my := geo.MemCoord(x, y, s)
					b = b.WithMemory(s, dev.mods[my][mx])
				}
			}

			dev.tiles[y][x] = b.Build(
				fmt.Sprintf("%s.Tile_%d_%d", name, x, y))
		}
	}

	d.connectPorts(dev)

	cgra.Trace("device built",
		"Device", name, "Width", d.width, "Height", d.height)

	return dev
}

// connectPorts wires one directed stream port for every tile and side.
// An interior output port is the neighbor's input port on the opposite
// side; boundary sides get dangling ports the driver feeds or drains.
func (d DeviceBuilder) connectPorts(dev *Device) {
	geo := dev.geo

	for y := 0; y < geo.Height; y++ {
		for x := 0; x < geo.Width; x++ {
			t := dev.tiles[y][x]

			for s := cgra.Side(0); s < cgra.NumSides; s++ {
				out := stream.NewPort(fmt.Sprintf("%s.Out_%s",
					t.Name(), s.Name()), d.portCap)
				t.ConnectOut(s, out)

				if geo.HasNeighbor(x, y, s) {
					nx, ny := geo.Neighbor(x, y, s)
					dev.tiles[ny][nx].ConnectIn(s.Opposite(), out)
				}
			}
		}
	}

	for y := 0; y < geo.Height; y++ {
		for x := 0; x < geo.Width; x++ {
			t := dev.tiles[y][x]

			for s := cgra.Side(0); s < cgra.NumSides; s++ {
				if !geo.HasNeighbor(x, y, s) {
					t.ConnectIn(s, stream.NewPort(fmt.Sprintf(
						"%s.In_%s", t.Name(), s.Name()), d.portCap))
				}
			}
		}
	}
}
