package cgra

import "errors"

// Errors that classify every failure the engine reports. Callers test
// them with errors.Is after unwrapping.
var (
	// ErrOutOfRange marks configuration errors: coordinates outside the
	// grid, lock indices outside the bank, port numbers outside the
	// switch. Detected eagerly at the call site, never clamped.
	ErrOutOfRange = errors.New("out of range")

	// ErrAlreadyRunning marks a task submission to a tile that is still
	// executing a previous one.
	ErrAlreadyRunning = errors.New("already running")

	// ErrOutOfMemory marks arena exhaustion in a tile allocator. It is
	// fatal to the tile that allocates, not to the process.
	ErrOutOfMemory = errors.New("out of memory")
)
