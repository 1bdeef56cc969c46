package tile_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/mem"
	"github.com/sarchlab/tessera/stream"
	"github.com/sarchlab/tessera/tile"
)

func buildLoneTile(heapSize int) *tile.Tile {
	g, err := cgra.NewGeometry(1, 1)
	if err != nil {
		panic(err)
	}

	m := mem.Builder{}.
		WithPosition(0, 0).
		WithDataSize(64).
		Build("Mem_0_0")

	return tile.Builder{}.
		WithGeometry(g).
		WithPosition(0, 0).
		WithMemory(cgra.East, m).
		WithHeapSize(heapSize).
		Build("Tile_0_0")
}

var _ = Describe("Tile lifecycle", func() {
	var t *tile.Tile

	BeforeEach(func() {
		t = buildLoneTile(256)
	})

	It("should run a task and report completion through Wait", func() {
		ran := false

		err := t.SingleTask(func() error {
			ran = true
			return nil
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(t.Wait()).To(Succeed())
		Expect(ran).To(BeTrue())
	})

	It("should reject a second task while one is running", func() {
		release := make(chan struct{})
		err := t.SingleTask(func() error {
			<-release
			return nil
		})
		Expect(err).ToNot(HaveOccurred())

		err = t.SingleTask(func() error { return nil })

		Expect(err).To(MatchError(cgra.ErrAlreadyRunning))

		close(release)
		Expect(t.Wait()).To(Succeed())
	})

	It("should propagate the task's error", func() {
		boom := errors.New("boom")

		Expect(t.SingleTask(func() error { return boom })).To(Succeed())

		Expect(t.Wait()).To(MatchError(boom))
	})

	It("should turn a task panic into the tile's failure", func() {
		Expect(t.SingleTask(func() error {
			panic("kernel fault")
		})).To(Succeed())

		err := t.Wait()

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("kernel fault"))
	})

	It("should report arena exhaustion as that tile's failure", func() {
		Expect(t.SingleTask(func() error {
			t.Heap().Alloc(1 << 20)
			return nil
		})).To(Succeed())

		Expect(t.Wait()).To(MatchError(cgra.ErrOutOfMemory))
	})

	It("should return immediately from Wait on an idle tile", func() {
		Expect(t.Wait()).To(Succeed())
	})

	It("should be reusable across rounds", func() {
		for round := 0; round < 3; round++ {
			Expect(t.SingleTask(func() error { return nil })).To(Succeed())
			Expect(t.Wait()).To(Succeed())
		}
	})

	It("should track the running state", func() {
		release := make(chan struct{})

		Expect(t.Busy()).To(BeFalse())
		Expect(t.SingleTask(func() error {
			<-release
			return nil
		})).To(Succeed())
		Expect(t.Busy()).To(BeTrue())

		close(release)
		Expect(t.Wait()).To(Succeed())
		Expect(t.Busy()).To(BeFalse())
	})
})

var _ = Describe("Tile accessors", func() {
	It("should expose the native module and reject absent sides", func() {
		t := buildLoneTile(0)

		Expect(t.Mem().Name()).To(Equal("Mem_0_0"))
		Expect(t.HasMemEast()).To(BeTrue())
		Expect(t.HasMemWest()).To(BeFalse())
		Expect(t.HasMemNorth()).To(BeFalse())
		Expect(t.HasMemSouth()).To(BeFalse())

		Expect(func() { t.MemWest() }).
			To(PanicWith(MatchError(cgra.ErrOutOfRange)))
		Expect(func() { t.MemNorth() }).
			To(PanicWith(MatchError(cgra.ErrOutOfRange)))
	})

	It("should reject heap access on a heapless tile", func() {
		t := buildLoneTile(0)

		Expect(t.HasHeap()).To(BeFalse())
		Expect(func() { t.Heap() }).
			To(PanicWith(MatchError(cgra.ErrOutOfRange)))
	})

	It("should translate port numbers onto sides", func() {
		t := buildLoneTile(0)
		in := stream.NewPort("In", 4)
		out := stream.NewPort("Out", 4)

		t.ConnectIn(cgra.West, in)
		t.ConnectOut(cgra.East, out)

		Expect(t.In(int(cgra.West))).To(BeIdenticalTo(in))
		Expect(t.Out(int(cgra.East))).To(BeIdenticalTo(out))

		Expect(func() { t.In(tile.NumPorts) }).
			To(PanicWith(MatchError(cgra.ErrOutOfRange)))
		Expect(func() { t.Out(-1) }).
			To(PanicWith(MatchError(cgra.ErrOutOfRange)))
		Expect(func() { t.In(int(cgra.North)) }).
			To(PanicWith(MatchError(cgra.ErrOutOfRange)))
	})

	It("should report coordinates and linear id", func() {
		t := buildLoneTile(0)

		Expect(t.X()).To(Equal(0))
		Expect(t.Y()).To(Equal(0))
		Expect(t.LinearID()).To(Equal(0))
		Expect(fmt.Sprint(t)).To(Equal("Tile(0, 0)"))
	})
})

var _ = Describe("Tile builder", func() {
	It("should require the native module", func() {
		g, _ := cgra.NewGeometry(1, 1)

		Expect(func() {
			tile.Builder{}.WithGeometry(g).WithPosition(0, 0).Build("T")
		}).To(PanicWith(MatchError(cgra.ErrOutOfRange)))
	})

	It("should reject modules on sides the geometry does not have", func() {
		g, _ := cgra.NewGeometry(1, 1)
		native := mem.Builder{}.WithPosition(0, 0).Build("M")
		west := mem.Builder{}.WithPosition(-1, 0).Build("W")

		Expect(func() {
			tile.Builder{}.
				WithGeometry(g).
				WithPosition(0, 0).
				WithMemory(cgra.East, native).
				WithMemory(cgra.West, west).
				Build("T")
		}).To(PanicWith(MatchError(cgra.ErrOutOfRange)))
	})

	It("should reject positions outside the geometry", func() {
		g, _ := cgra.NewGeometry(2, 2)

		Expect(func() {
			tile.Builder{}.WithGeometry(g).WithPosition(2, 0).Build("T")
		}).To(PanicWith(MatchError(cgra.ErrOutOfRange)))
	})
})
