package config

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/tessera/tile"
)

// FprintState renders a per-tile state table of the device. It is
// meant for inspecting a stuck or misbehaving array, so it reads tile
// state without stopping the kernels.
func FprintState(w io.Writer, d *Device) {
	tbl := table.NewWriter()
	tbl.SetTitle(fmt.Sprintf("%s (%dx%d)",
		d.name, d.geo.Width, d.geo.Height))
	tbl.AppendHeader(table.Row{
		"Tile", "State", "Heap Free", "Lock 14", "Lock 15"})

	for y := 0; y < d.geo.Height; y++ {
		for x := 0; x < d.geo.Width; x++ {
			t := d.tiles[y][x]

			state := "idle"
			if t.Busy() {
				state = "busy"
			}

			heap := "-"
			if t.HasHeap() {
				heap = fmt.Sprintf("%d/%d",
					t.Heap().FreeBytes(), t.Heap().Size())
			}

			tbl.AppendRow(table.Row{
				t.String(),
				state,
				heap,
				t.Mem().Lock(tile.HBarrierLock).Value(),
				t.Mem().Lock(tile.VBarrierLock).Value(),
			})
		}
	}

	fmt.Fprintln(w, tbl.Render())
}
