// Package stream implements the blocking FIFO ports that carry data
// words between tiles and across the array boundary.
package stream

import (
	"fmt"
	"sync"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tessera/cgra"
)

// Port is one directed channel of 32-bit words. Pushes block while the
// buffer is full and pops block while it is empty; there are no
// timeouts. Each end of a port is used by one context at a time.
type Port struct {
	name string

	lock     sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	buf      sim.Buffer
}

// NewPort creates a port buffering up to capacity words.
func NewPort(name string, capacity int) *Port {
	if capacity < 1 {
		panic(fmt.Errorf("%w: port capacity %d, must be at least 1",
			cgra.ErrOutOfRange, capacity))
	}

	p := &Port{
		name: name,
		buf:  sim.NewBuffer(name+".Buf", capacity),
	}
	p.notEmpty = sync.NewCond(&p.lock)
	p.notFull = sync.NewCond(&p.lock)

	return p
}

// Name returns the name of the port.
func (p *Port) Name() string {
	return p.name
}

// Push appends v, blocking while the port is full.
func (p *Port) Push(v uint32) {
	p.lock.Lock()
	for !p.buf.CanPush() {
		p.notFull.Wait()
	}
	p.buf.Push(v)
	p.lock.Unlock()

	p.notEmpty.Signal()
}

// Pop removes and returns the oldest word, blocking while the port is
// empty.
func (p *Port) Pop() uint32 {
	p.lock.Lock()
	for p.buf.Size() == 0 {
		p.notEmpty.Wait()
	}
	v := p.buf.Pop().(uint32)
	p.lock.Unlock()

	p.notFull.Signal()

	return v
}

// TryPush appends v unless the port is full.
func (p *Port) TryPush(v uint32) bool {
	p.lock.Lock()
	if !p.buf.CanPush() {
		p.lock.Unlock()
		return false
	}
	p.buf.Push(v)
	p.lock.Unlock()

	p.notEmpty.Signal()

	return true
}

// TryPop removes and returns the oldest word unless the port is empty.
func (p *Port) TryPop() (uint32, bool) {
	p.lock.Lock()
	if p.buf.Size() == 0 {
		p.lock.Unlock()
		return 0, false
	}
	v := p.buf.Pop().(uint32)
	p.lock.Unlock()

	p.notFull.Signal()

	return v, true
}

// Len returns the number of buffered words.
func (p *Port) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.buf.Size()
}

// Cap returns the buffer capacity.
func (p *Port) Cap() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.buf.Capacity()
}
