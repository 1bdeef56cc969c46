package alloc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tessera/alloc"
	"github.com/sarchlab/tessera/cgra"
)

var _ = Describe("Arena", func() {
	var a *alloc.Arena

	BeforeEach(func() {
		var err error
		a, err = alloc.New(make([]byte, 256))
		Expect(err).ToNot(HaveOccurred())
	})

	It("should start as one free block spanning the arena", func() {
		Expect(a.BlockCount()).To(Equal(1))
		Expect(a.FreeBytes()).To(Equal(uint32(248)))
		Expect(a.LargestFree()).To(Equal(uint32(248)))
	})

	It("should reject arenas too small for a block", func() {
		_, err := alloc.New(make([]byte, 15))

		Expect(err).To(MatchError(cgra.ErrOutOfRange))
	})

	It("should split a large block and keep the remainder free", func() {
		off, ok := a.TryAlloc(16)

		Expect(ok).To(BeTrue())
		Expect(off).To(Equal(uint32(8)))
		Expect(a.BlockCount()).To(Equal(2))
		// The remainder loses one more header: 248 - 16 - 8.
		Expect(a.FreeBytes()).To(Equal(uint32(224)))
	})

	It("should not split when the remainder would be too small", func() {
		buf := make([]byte, 8+20)
		small, err := alloc.New(buf)
		Expect(err).ToNot(HaveOccurred())

		off, ok := small.TryAlloc(16)

		Expect(ok).To(BeTrue())
		Expect(small.BlockCount()).To(Equal(1))
		Expect(small.FreeBytes()).To(Equal(uint32(0)))
		// The whole 20-byte block belongs to the allocation.
		Expect(small.Bytes(off)).To(HaveLen(20))
	})

	It("should round sizes up to the alignment", func() {
		_, ok := a.TryAlloc(5)

		Expect(ok).To(BeTrue())
		Expect(a.FreeBytes()).To(Equal(uint32(232)))
	})

	It("should hand back writable payloads of the allocated size", func() {
		off, ok := a.TryAlloc(100)
		Expect(ok).To(BeTrue())

		p := a.Bytes(off)
		Expect(p).To(HaveLen(100))

		for i := range p {
			p[i] = byte(i)
		}
		Expect(a.Bytes(off)[99]).To(Equal(byte(99)))
	})

	It("should reuse a freed block at the same offset", func() {
		off, _ := a.TryAlloc(16)
		a.Free(off)

		again, ok := a.TryAlloc(16)

		Expect(ok).To(BeTrue())
		Expect(again).To(Equal(off))
	})

	It("should fail when no block is large enough", func() {
		_, ok := a.TryAlloc(10000)

		Expect(ok).To(BeFalse())
	})

	It("should panic on Alloc when the arena is exhausted", func() {
		Expect(func() { a.Alloc(10000) }).
			To(PanicWith(MatchError(cgra.ErrOutOfMemory)))
	})

	It("should not merge adjacent free blocks", func() {
		first := a.Alloc(100)
		second := a.Alloc(100)

		a.Free(first)
		a.Free(second)

		// 232 bytes are free in total, but fragmented in 100/100/32
		// blocks, so nothing beyond 100 bytes can be carved.
		Expect(a.FreeBytes()).To(Equal(uint32(232)))
		Expect(a.LargestFree()).To(Equal(uint32(100)))

		_, ok := a.TryAlloc(104)
		Expect(ok).To(BeFalse())

		_, ok = a.TryAlloc(100)
		Expect(ok).To(BeTrue())
	})

	It("should reject offsets that address no block", func() {
		Expect(func() { a.Free(13) }).
			To(PanicWith(MatchError(cgra.ErrOutOfRange)))
		Expect(func() { a.Bytes(4096) }).
			To(PanicWith(MatchError(cgra.ErrOutOfRange)))
	})

	It("should treat a double free as a no-op", func() {
		off := a.Alloc(16)

		a.Free(off)
		a.Free(off)

		Expect(a.FreeBytes()).To(Equal(uint32(240)))
	})
})
