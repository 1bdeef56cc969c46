package tile_test

import (
	"fmt"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/lock"
	"github.com/sarchlab/tessera/mem"
	"github.com/sarchlab/tessera/sched"
	"github.com/sarchlab/tessera/tile"
)

type testGrid struct {
	geo   cgra.Geometry
	mods  [][]*mem.Module
	tiles [][]*tile.Tile
}

func buildTestGrid(width, height int, exec sched.Executor) *testGrid {
	g, err := cgra.NewGeometry(width, height)
	if err != nil {
		panic(err)
	}

	grid := &testGrid{geo: g}

	grid.mods = make([][]*mem.Module, height)
	for y := 0; y < height; y++ {
		grid.mods[y] = make([]*mem.Module, width)
		for x := 0; x < width; x++ {
			grid.mods[y][x] = mem.Builder{}.
				WithPosition(x, y).
				WithDataSize(64).
				Build(fmt.Sprintf("Mem_%d_%d", x, y))
		}
	}

	grid.tiles = make([][]*tile.Tile, height)
	for y := 0; y < height; y++ {
		grid.tiles[y] = make([]*tile.Tile, width)
		for x := 0; x < width; x++ {
			b := tile.Builder{}.
				WithGeometry(g).
				WithPosition(x, y).
				WithExecutor(exec)

			for s := cgra.Side(0); s < cgra.NumSides; s++ {
				if g.HasMem(x, y, s) {
					mx, my := g.MemCoord(x, y, s)
					b = b.WithMemory(s, grid.mods[my][mx])
				}
			}

			grid.tiles[y][x] = b.Build(fmt.Sprintf("Tile_%d_%d", x, y))
		}
	}

	return grid
}

func (g *testGrid) runOnAll(f func(t *tile.Tile) error) error {
	for _, row := range g.tiles {
		for _, t := range row {
			t := t
			if err := t.SingleTask(func() error { return f(t) }); err != nil {
				return err
			}
		}
	}

	var firstErr error
	for _, row := range g.tiles {
		for _, t := range row {
			if err := t.Wait(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (g *testGrid) lockValues(lockID int) []bool {
	var values []bool
	for _, row := range g.mods {
		for _, m := range row {
			values = append(values, m.Lock(lockID).Value())
		}
	}

	return values
}

var executors = map[string]sched.Executor{
	"goroutine executor": sched.GoroutineExecutor{},
	"thread executor":    sched.ThreadExecutor{},
}

var _ = Describe("Barrier", func() {
	for name, exec := range executors {
		exec := exec

		Context("under the "+name, func() {
			It("should synchronize a single row", func() {
				grid := buildTestGrid(3, 1, exec)
				arrived := int32(0)

				err := grid.runOnAll(func(t *tile.Tile) error {
					atomic.AddInt32(&arrived, 1)
					t.HorizontalBarrier()

					if n := atomic.LoadInt32(&arrived); n != 3 {
						return fmt.Errorf("tile (%d,%d) left with %d arrivals",
							t.X(), t.Y(), n)
					}
					return nil
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(grid.lockValues(tile.HBarrierLock)).
					ToNot(ContainElement(true))
			})

			It("should synchronize a single column", func() {
				grid := buildTestGrid(1, 3, exec)
				arrived := int32(0)

				err := grid.runOnAll(func(t *tile.Tile) error {
					atomic.AddInt32(&arrived, 1)
					t.VerticalBarrier()

					if n := atomic.LoadInt32(&arrived); n != 3 {
						return fmt.Errorf("tile (%d,%d) left with %d arrivals",
							t.X(), t.Y(), n)
					}
					return nil
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(grid.lockValues(tile.VBarrierLock)).
					ToNot(ContainElement(true))
			})

			It("should keep rounds separate on a 3x2 array", func() {
				const rounds = 5

				grid := buildTestGrid(3, 2, exec)
				total := int32(grid.geo.Size())

				var arrived [rounds]int32
				err := grid.runOnAll(func(t *tile.Tile) error {
					for r := 0; r < rounds; r++ {
						atomic.AddInt32(&arrived[r], 1)
						t.Barrier()

						if n := atomic.LoadInt32(&arrived[r]); n != total {
							return fmt.Errorf(
								"tile (%d,%d) left round %d with %d of %d arrivals",
								t.X(), t.Y(), r, n, total)
						}
					}
					return nil
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(grid.lockValues(tile.HBarrierLock)).
					ToNot(ContainElement(true))
				Expect(grid.lockValues(tile.VBarrierLock)).
					ToNot(ContainElement(true))
			})
		})
	}

	It("should run on a caller-chosen lock index", func() {
		grid := buildTestGrid(2, 1, sched.GoroutineExecutor{})
		arrived := int32(0)

		err := grid.runOnAll(func(t *tile.Tile) error {
			atomic.AddInt32(&arrived, 1)
			t.HorizontalBarrierOn(3)

			if n := atomic.LoadInt32(&arrived); n != 2 {
				return fmt.Errorf("left with %d arrivals", n)
			}
			return nil
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(grid.lockValues(3)).ToNot(ContainElement(true))
		Expect(grid.lockValues(tile.HBarrierLock)).
			ToNot(ContainElement(true))
	})

	It("should complete as a no-op on a lone tile", func() {
		grid := buildTestGrid(1, 1, sched.GoroutineExecutor{})

		err := grid.runOnAll(func(t *tile.Tile) error {
			t.Barrier()
			return nil
		})

		Expect(err).ToNot(HaveOccurred())
	})

	It("should let neighbors exchange data through the shared module", func() {
		grid := buildTestGrid(2, 1, sched.GoroutineExecutor{})

		// Tile (0,0) owns Mem_0_0 natively; tile (1,0) sees the same
		// module on its western side.
		producer := func(t *tile.Tile) error {
			t.Mem().Data()[0] = 0x5a
			t.Barrier()
			return nil
		}
		consumer := func(t *tile.Tile) error {
			t.Barrier()
			if t.MemWest().Data()[0] != 0x5a {
				return fmt.Errorf("shared module not visible after barrier")
			}
			return nil
		}

		err := grid.runOnAll(func(t *tile.Tile) error {
			if t.X() == 0 {
				return producer(t)
			}
			return consumer(t)
		})

		Expect(err).ToNot(HaveOccurred())
	})
})

var _ = Describe("Lock bank on a module", func() {
	It("should expose all sixteen devices", func() {
		m := mem.Builder{}.WithPosition(0, 0).WithDataSize(16).Build("M")

		for i := 0; i < lock.NumLocks; i++ {
			Expect(m.Lock(i).Value()).To(BeFalse())
		}

		Expect(func() { m.Lock(lock.NumLocks) }).
			To(PanicWith(MatchError(cgra.ErrOutOfRange)))
	})
})
