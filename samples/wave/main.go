// The wave sample propagates a plucked string across a row of tiles.
// Each tile owns one segment of the string in its native memory module
// and trades boundary points with its neighbors through the shared
// modules, one publish and one compute phase per timestep, with a
// barrier after each phase. No locks are involved: every halo word has
// a single writer and a single reader on opposite sides of a barrier.
package main

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/tessera/config"
	"github.com/sarchlab/tessera/tile"
)

const (
	width  = 4
	points = 4
	steps  = 8

	courant float32 = 0.25

	pluckAt = 5

	// Module data layout, in 32-bit words: the outgoing halo toward
	// the eastern neighbor, the incoming halo from it, the segment.
	rightHaloWord = 0
	leftHaloWord  = 1
	segmentBase   = 2
)

func loadF32(buf []byte, word int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[4*word:]))
}

func storeF32(buf []byte, word int, v float32) {
	binary.LittleEndian.PutUint32(buf[4*word:], math.Float32bits(v))
}

// step advances one string point by one leapfrog timestep.
func step(left, mid, right, prev float32) float32 {
	return 2*mid - prev + courant*(left-2*mid+right)
}

func initialDisplacement(global int) float32 {
	if global == pluckAt {
		return 1
	}

	return 0
}

func waveKernel(t *tile.Tile) error {
	seg := t.Mem().Data()

	prev := t.Heap().Bytes(t.Heap().Alloc(4 * points))
	next := t.Heap().Bytes(t.Heap().Alloc(4 * points))

	for i := 0; i < points; i++ {
		u := initialDisplacement(t.X()*points + i)
		storeF32(seg, segmentBase+i, u)
		storeF32(prev, i, u)
	}

	for s := 0; s < steps; s++ {
		// Publish the segment ends for the neighbors to read.
		storeF32(seg, rightHaloWord, loadF32(seg, segmentBase+points-1))
		if t.HasMemWest() {
			storeF32(t.MemWest().Data(), leftHaloWord,
				loadF32(seg, segmentBase))
		}
		t.Barrier()

		// The ends of the string are pinned at zero.
		var leftGhost, rightGhost float32
		if t.HasMemWest() {
			leftGhost = loadF32(t.MemWest().Data(), rightHaloWord)
		}
		if !t.Geometry().IsEastColumn(t.X()) {
			rightGhost = loadF32(seg, leftHaloWord)
		}

		for i := 0; i < points; i++ {
			left := leftGhost
			if i > 0 {
				left = loadF32(seg, segmentBase+i-1)
			}

			right := rightGhost
			if i < points-1 {
				right = loadF32(seg, segmentBase+i+1)
			}

			storeF32(next, i,
				step(left, loadF32(seg, segmentBase+i), right,
					loadF32(prev, i)))
		}

		for i := 0; i < points; i++ {
			storeF32(prev, i, loadF32(seg, segmentBase+i))
			storeF32(seg, segmentBase+i, loadF32(next, i))
		}
		t.Barrier()
	}

	return nil
}

func buildDevice() *config.Device {
	return config.DeviceBuilder{}.
		WithWidth(width).
		WithHeight(1).
		WithMemSize(64).
		WithHeapSize(128).
		Build("Wave")
}

func main() {
	dev := buildDevice()

	if err := dev.RunAll(tile.KernelFunc(waveKernel)); err != nil {
		fmt.Println("run failed:", err)
		atexit.Exit(1)
	}

	for x := 0; x < width; x++ {
		seg := dev.GetMem(x, 0).Data()
		for i := 0; i < points; i++ {
			fmt.Printf("%7.4f", loadF32(seg, segmentBase+i))
		}
	}
	fmt.Println()

	atexit.Exit(0)
}
