package tile

import "github.com/sarchlab/tessera/cgra"

// Lock indexes conventionally reserved for the barrier protocols.
const (
	HBarrierLock = 14
	VBarrierLock = 15
)

// HorizontalBarrier synchronizes the tile with the rest of its row on
// lock HBarrierLock.
func (t *Tile) HorizontalBarrier() {
	t.HorizontalBarrierOn(HBarrierLock)
}

// VerticalBarrier synchronizes the tile with the rest of its column on
// lock VBarrierLock.
func (t *Tile) VerticalBarrier() {
	t.VerticalBarrierOn(VBarrierLock)
}

// Barrier synchronizes the tile with the whole array: a horizontal
// barrier along the row, then a vertical one along the column. Every
// tile of the array must call it, or the array deadlocks, as the
// modeled hardware would.
func (t *Tile) Barrier() {
	cgra.Trace("barrier", "X", t.x, "Y", t.y)

	t.HorizontalBarrier()
	t.VerticalBarrier()
}

// HorizontalBarrierOn runs the row barrier on an arbitrary lock index.
//
// The token is passed through the shared modules, from the non-native
// owner toward the native owner of each module, with an acknowledge
// running back. On odd rows the native module is the western one, so
// the token travels West to East; even rows mirror it. Lock values are
// false again once every tile of the row has left.
func (t *Tile) HorizontalBarrierOn(lockID int) {
	if t.y&1 == 1 {
		if !t.geo.IsWestColumn(t.x) {
			t.Mem().Lock(lockID).AcquireWithValue(true)
		}

		if t.HasMemEast() {
			l := t.MemEast().Lock(lockID)
			l.AcquireWithValue(false)
			l.ReleaseWithValue(true)
			l.AcquireWithValue(false)
		}

		if !t.geo.IsWestColumn(t.x) {
			t.Mem().Lock(lockID).ReleaseWithValue(false)
		}

		return
	}

	if !t.geo.IsEastColumn(t.x) {
		t.Mem().Lock(lockID).AcquireWithValue(true)
	}

	if t.HasMemWest() {
		l := t.MemWest().Lock(lockID)
		l.AcquireWithValue(false)
		l.ReleaseWithValue(true)
		l.AcquireWithValue(false)
	}

	if !t.geo.IsEastColumn(t.x) {
		t.Mem().Lock(lockID).ReleaseWithValue(false)
	}
}

// VerticalBarrierOn runs the column barrier on an arbitrary lock index.
// The token always travels South to North: every tile signals through
// the module at its northern neighbor's lattice point and waits on its
// own.
func (t *Tile) VerticalBarrierOn(lockID int) {
	if !t.geo.IsSouthRow(t.y) {
		t.Mem().Lock(lockID).AcquireWithValue(true)
	}

	if t.HasMemNorth() {
		l := t.MemNorth().Lock(lockID)
		l.AcquireWithValue(false)
		l.ReleaseWithValue(true)
		l.AcquireWithValue(false)
	}

	if !t.geo.IsSouthRow(t.y) {
		t.Mem().Lock(lockID).ReleaseWithValue(false)
	}
}
