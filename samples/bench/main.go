// The bench sample builds a device from a YAML description and runs a
// three-stage pipeline on it: a source tile streams values East, a
// relay forwards them, and a sink stores them in its memory module.
package main

import (
	"encoding/binary"
	"fmt"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/tessera/api"
	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/config"
	"github.com/sarchlab/tessera/tile"
	valgen "github.com/sarchlab/tessera/util"
)

const count = 6

func registerKernels(reg *config.KernelRegistry) {
	reg.Register("source", tile.KernelFunc(func(t *tile.Tile) error {
		gen := valgen.MakeIncreasingGen(100)
		for i := 0; i < count; i++ {
			t.OutSide(cgra.East).Push(gen())
		}
		return nil
	}))

	reg.Register("relay", tile.KernelFunc(func(t *tile.Tile) error {
		for i := 0; i < count; i++ {
			t.OutSide(cgra.East).Push(t.InSide(cgra.West).Pop())
		}
		return nil
	}))

	reg.Register("sink", tile.KernelFunc(func(t *tile.Tile) error {
		buf := t.Mem().Data()
		for i := 0; i < count; i++ {
			binary.LittleEndian.PutUint32(
				buf[4*i:], t.InSide(cgra.West).Pop())
		}
		return nil
	}))
}

func main() {
	reg := config.NewKernelRegistry()
	registerKernels(reg)

	bench, err := config.LoadBench("./bench.yaml")
	if err != nil {
		fmt.Println("failed to load bench:", err)
		atexit.Exit(1)
	}

	dev, err := bench.Build(reg)
	if err != nil {
		fmt.Println("failed to build device:", err)
		atexit.Exit(1)
	}

	driver := api.DriverBuilder{}.Build("Driver")
	driver.RegisterDevice(dev)

	if err := driver.Run(); err != nil {
		fmt.Println("run failed:", err)
		atexit.Exit(1)
	}

	out := make([]uint32, count)
	for i := range out {
		out[i] = driver.ReadMemory(2, 0, uint32(i))
	}
	fmt.Println(out)

	atexit.Exit(0)
}
