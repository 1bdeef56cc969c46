package tile

// Kernel is the behavior a tile runs. Variant kernel types are mapped
// onto coordinates by the composition layer; every tile runs its own
// invocation with its own tile handle.
type Kernel interface {
	Run(t *Tile) error
}

// KernelFunc adapts a plain function to the Kernel interface.
type KernelFunc func(t *Tile) error

// Run invokes the function.
func (f KernelFunc) Run(t *Tile) error {
	return f(t)
}
