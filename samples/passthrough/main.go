package main

import (
	"fmt"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/tessera/api"
	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/config"
	"github.com/sarchlab/tessera/tile"
	valgen "github.com/sarchlab/tessera/util"
)

func relayKernel(rounds int) tile.Kernel {
	return tile.KernelFunc(func(t *tile.Tile) error {
		for i := 0; i < rounds; i++ {
			t.OutSide(cgra.East).Push(t.InSide(cgra.West).Pop())
		}
		return nil
	})
}

func passThrough(driver api.Driver) {
	length := 8
	src := valgen.Take(valgen.MakeIncreasingGen(0), length)
	dst := make([]uint32, length)

	driver.FeedIn(src, cgra.West, [2]int{0, 4}, 4)
	driver.Collect(dst, cgra.East, [2]int{0, 4}, 4)

	for y := 0; y < 4; y++ {
		err := driver.MapKernel(relayKernel(length/4), [2]int{0, y})
		if err != nil {
			panic(err)
		}
	}

	if err := driver.Run(); err != nil {
		panic(err)
	}

	fmt.Println(src)
	fmt.Println(dst)
}

func main() {
	driver := api.DriverBuilder{}.Build("Driver")

	device := config.DeviceBuilder{}.
		WithWidth(1).
		WithHeight(4).
		Build("Device")

	driver.RegisterDevice(device)

	passThrough(driver)

	atexit.Exit(0)
}
