// Package api defines the driver API for a CGRA device.
package api

import (
	"encoding/binary"
	"sync"

	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/mem"
	"github.com/sarchlab/tessera/stream"
	"github.com/sarchlab/tessera/tile"
)

// A Device is a CGRA device as the driver sees it: a mesh of tiles
// that can run kernels, with stream ports along its boundary.
type Device interface {
	// GetSize returns the width and height of the device.
	GetSize() (width, height int)

	// GetTile returns the tile at the given coordinate.
	GetTile(x, y int) *tile.Tile

	// GetMem returns the memory module at the given lattice point.
	GetMem(x, y int) *mem.Module

	// SetKernel maps a kernel onto the tile at the given coordinate.
	SetKernel(x, y int, k tile.Kernel) error

	// Run runs the mapped kernels and blocks until the array is done.
	Run() error

	// GetSideInPorts returns the boundary input ports on a side.
	GetSideInPorts(side cgra.Side, portRange [2]int) []*stream.Port

	// GetSideOutPorts returns the boundary output ports on a side.
	GetSideOutPorts(side cgra.Side, portRange [2]int) []*stream.Port
}

// Driver provides the interface to control an accelerator.
type Driver interface {
	// RegisterDevice registers a device to the driver. Feed, collect,
	// and kernel mappings apply to the registered device.
	RegisterDevice(device Device)

	// FeedIn schedules data to be pushed into the boundary input ports
	// on the given side. In every round each port in the range receives
	// one word; the port at index i of the range receives
	// data[round*stride+i].
	FeedIn(data []uint32, side cgra.Side, portRange [2]int, stride int)

	// Collect schedules data to be drained from the boundary output
	// ports on the given side. In every round each port in the range
	// yields one word; the port at index i of the range fills
	// data[round*stride+i].
	Collect(data []uint32, side cgra.Side, portRange [2]int, stride int)

	// MapKernel maps a kernel onto the tile at the given coordinate.
	MapKernel(k tile.Kernel, core [2]int) error

	// PreloadMemory writes words into the memory module at (x, y)
	// before a run. The base address counts 32-bit words.
	PreloadMemory(x, y int, data []uint32, base uint32)

	// ReadMemory reads one word from the memory module at (x, y). The
	// address counts 32-bit words.
	ReadMemory(x, y int, addr uint32) uint32

	// Run runs the device together with all the feed and collect tasks
	// that have been added to the driver, and blocks until the kernels
	// and the tasks are done.
	Run() error
}

type driverImpl struct {
	name   string
	device Device

	feedInTasks  []*feedInTask
	collectTasks []*collectTask
}

// RegisterDevice registers a device to the driver.
func (d *driverImpl) RegisterDevice(device Device) {
	d.device = device
}

type feedInTask struct {
	data   []uint32
	ports  []*stream.Port
	stride int
}

func (t *feedInTask) run() {
	rounds := len(t.data) / t.stride

	for round := 0; round < rounds; round++ {
		for i, port := range t.ports {
			port.Push(t.data[round*t.stride+i])
		}
	}
}

func (d *driverImpl) FeedIn(
	data []uint32,
	side cgra.Side,
	portRange [2]int,
	stride int,
) {
	task := &feedInTask{
		data:   data,
		ports:  d.device.GetSideInPorts(side, portRange),
		stride: stride,
	}

	d.feedInTasks = append(d.feedInTasks, task)
}

type collectTask struct {
	data   []uint32
	ports  []*stream.Port
	stride int
}

func (t *collectTask) run() {
	rounds := len(t.data) / t.stride

	for round := 0; round < rounds; round++ {
		for i, port := range t.ports {
			t.data[round*t.stride+i] = port.Pop()
		}
	}
}

func (d *driverImpl) Collect(
	data []uint32,
	side cgra.Side,
	portRange [2]int,
	stride int,
) {
	task := &collectTask{
		data:   data,
		ports:  d.device.GetSideOutPorts(side, portRange),
		stride: stride,
	}

	d.collectTasks = append(d.collectTasks, task)
}

// MapKernel dispatches a kernel to a tile.
func (d *driverImpl) MapKernel(k tile.Kernel, core [2]int) error {
	return d.device.SetKernel(core[0], core[1], k)
}

// PreloadMemory stages words in a memory module, one 32-bit word per
// word address.
func (d *driverImpl) PreloadMemory(x, y int, data []uint32, base uint32) {
	buf := d.device.GetMem(x, y).Data()

	for i, word := range data {
		binary.LittleEndian.PutUint32(buf[4*(base+uint32(i)):], word)
	}
}

// ReadMemory reads back one word from a memory module.
func (d *driverImpl) ReadMemory(x, y int, addr uint32) uint32 {
	return binary.LittleEndian.Uint32(d.device.GetMem(x, y).Data()[4*addr:])
}

// Run runs all the tasks in the driver. The feed and collect tasks
// move data concurrently with the kernels; a task whose data the
// kernels never consume or produce blocks the driver, just like a
// kernel stuck on a port blocks the device.
func (d *driverImpl) Run() error {
	cgra.Trace("driver run", "Driver", d.name,
		"FeedInTasks", len(d.feedInTasks),
		"CollectTasks", len(d.collectTasks))

	var wg sync.WaitGroup

	for _, task := range d.feedInTasks {
		wg.Add(1)
		go func(t *feedInTask) {
			defer wg.Done()
			t.run()
		}(task)
	}

	for _, task := range d.collectTasks {
		wg.Add(1)
		go func(t *collectTask) {
			defer wg.Done()
			t.run()
		}(task)
	}

	err := d.device.Run()
	wg.Wait()

	d.feedInTasks = nil
	d.collectTasks = nil

	return err
}
