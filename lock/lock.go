// Package lock implements the value-gated lock unit of a memory module.
package lock

import (
	"fmt"
	"sync"

	"github.com/sarchlab/tessera/cgra"
)

// NumLocks is the number of lock devices in one unit.
const NumLocks = 16

// Device is one value-gated lock: a mutex, a condition variable, and a
// boolean value, initially false. The synchronization protocols put at
// most one waiter on a device at a time.
type Device struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value bool
}

// Acquire takes plain ownership of the lock, ignoring the value.
func (d *Device) Acquire() {
	d.mu.Lock()
}

// Release gives up ownership taken by Acquire. Releasing a lock that
// was never acquired is a programming error and panics.
func (d *Device) Release() {
	d.mu.Unlock()
}

// AcquireWithValue blocks the caller until the lock value equals
// expected. The value itself is left untouched.
func (d *Device) AcquireWithValue(expected bool) {
	d.mu.Lock()
	for d.value != expected {
		d.cond.Wait()
	}
	d.mu.Unlock()
}

// ReleaseWithValue sets the lock value and wakes the waiter, if any.
func (d *Device) ReleaseWithValue(v bool) {
	d.mu.Lock()
	d.value = v
	d.mu.Unlock()

	d.cond.Signal()
}

// Value reads the current lock value.
func (d *Device) Value() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.value
}

// Unit is the bank of lock devices carried by one memory module.
type Unit struct {
	locks [NumLocks]Device
}

// NewUnit creates a lock unit with all values false.
func NewUnit() *Unit {
	u := &Unit{}
	for i := range u.locks {
		u.locks[i].cond = sync.NewCond(&u.locks[i].mu)
	}

	return u
}

// Lock returns device i. Indexes outside [0, NumLocks) panic.
func (u *Unit) Lock(i int) *Device {
	if i < 0 || i >= NumLocks {
		panic(fmt.Errorf("%w: lock index %d, the unit has locks 0 to %d",
			cgra.ErrOutOfRange, i, NumLocks-1))
	}

	return &u.locks[i]
}
