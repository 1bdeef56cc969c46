// Package sched provides the execution backends that carry tile
// programs.
package sched

import "runtime"

// Executor launches tile programs. Backends differ only in how the
// program is scheduled onto machine threads; blocking behavior is the
// same under all of them.
type Executor interface {
	Launch(f func())
}

// GoroutineExecutor runs every program on its own goroutine, letting
// the runtime multiplex blocked programs over a shared thread pool.
type GoroutineExecutor struct{}

// Launch starts f.
func (GoroutineExecutor) Launch(f func()) {
	go f()
}

// ThreadExecutor pins every program to a dedicated OS thread for the
// whole run.
type ThreadExecutor struct{}

// Launch starts f on its own thread.
func (ThreadExecutor) Launch(f func()) {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		f()
	}()
}
