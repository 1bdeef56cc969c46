// The census sample has every tile stamp every memory module it can
// reach, one barrier round at a time. The tallies are deterministic:
// each module ends up with one stamp per round per reachable tile.
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/config"
	"github.com/sarchlab/tessera/tile"
)

const (
	width  = 3
	height = 3
	rounds = 4

	tallyLock = 0
)

func censusKernel(t *tile.Tile) error {
	for r := 0; r < rounds; r++ {
		for s := cgra.Side(0); s < cgra.NumSides; s++ {
			if !t.HasMemSide(s) {
				continue
			}

			m := t.MemSide(s)
			l := m.Lock(tallyLock)
			l.Acquire()
			tally := binary.LittleEndian.Uint32(m.Data())
			binary.LittleEndian.PutUint32(m.Data(), tally+1)
			l.Release()
		}

		t.Barrier()
	}

	return nil
}

// expectedTally counts the tiles that reach the module at (x, y): its
// horizontal owners plus the tiles right below and above it.
func expectedTally(dev *config.Device, x, y int) uint32 {
	touchers := len(dev.Owners(x, y))
	if y > 0 {
		touchers++
	}
	if y < height-1 {
		touchers++
	}

	return uint32(rounds * touchers)
}

func main() {
	dev := config.DeviceBuilder{}.
		WithWidth(width).
		WithHeight(height).
		WithMemSize(64).
		Build("Census")

	if err := dev.RunAll(tile.KernelFunc(censusKernel)); err != nil {
		fmt.Println("run failed:", err)
		atexit.Exit(1)
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetTitle("Module tallies")
	tbl.AppendHeader(table.Row{"Module", "Tally", "Expected"})

	ok := true
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			got := binary.LittleEndian.Uint32(dev.GetMem(x, y).Data())
			want := expectedTally(dev, x, y)
			if got != want {
				ok = false
			}
			tbl.AppendRow(table.Row{dev.GetMem(x, y).Name(), got, want})
		}
	}
	tbl.Render()

	if !ok {
		fmt.Println("census mismatch")
		atexit.Exit(1)
	}

	fmt.Println("census complete")
	atexit.Exit(0)
}
