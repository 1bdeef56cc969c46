package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/tessera/cgra"
	"github.com/sarchlab/tessera/tile"
)

// A KernelRegistry maps kernel names to kernel implementations, so
// that benchmark files can refer to kernels by name.
type KernelRegistry struct {
	kernels map[string]tile.Kernel
}

// NewKernelRegistry creates an empty kernel registry.
func NewKernelRegistry() *KernelRegistry {
	return &KernelRegistry{kernels: make(map[string]tile.Kernel)}
}

// Register adds a named kernel. Registering the same name twice is a
// programming error.
func (r *KernelRegistry) Register(name string, k tile.Kernel) {
	if _, ok := r.kernels[name]; ok {
		panic(fmt.Sprintf("kernel %q registered twice", name))
	}

	r.kernels[name] = k
}

// Lookup returns the kernel registered under the given name.
func (r *KernelRegistry) Lookup(name string) (tile.Kernel, bool) {
	k, ok := r.kernels[name]
	return k, ok
}

// Names returns the registered kernel names in sorted order.
func (r *KernelRegistry) Names() []string {
	names := make([]string, 0, len(r.kernels))
	for name := range r.kernels {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// A KernelMapping places one named kernel on one tile.
type KernelMapping struct {
	At   [2]int `yaml:"at"`
	Name string `yaml:"name"`
}

// A Bench describes a device and a kernel placement in a form that can
// be loaded from a YAML file.
type Bench struct {
	Name     string          `yaml:"name"`
	Width    int             `yaml:"width"`
	Height   int             `yaml:"height"`
	MemSize  int             `yaml:"mem_size"`
	HeapSize int             `yaml:"heap_size"`
	PortCap  int             `yaml:"port_capacity"`
	Kernels  []KernelMapping `yaml:"kernels"`
}

// LoadBench reads a benchmark description from a YAML file.
func LoadBench(path string) (*Bench, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load bench: %w", err)
	}

	var b Bench
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("load bench %s: %w", path, err)
	}

	return &b, nil
}

// Build creates the device the bench describes and maps its kernels,
// resolving kernel names through the registry.
func (b *Bench) Build(reg *KernelRegistry) (*Device, error) {
	if _, err := cgra.NewGeometry(b.Width, b.Height); err != nil {
		return nil, err
	}

	name := b.Name
	if name == "" {
		name = "Device"
	}

	dev := DeviceBuilder{}.
		WithWidth(b.Width).
		WithHeight(b.Height).
		WithMemSize(b.MemSize).
		WithHeapSize(b.HeapSize).
		WithPortCapacity(b.PortCap).
		Build(name)

	for _, m := range b.Kernels {
		k, ok := reg.Lookup(m.Name)
		if !ok {
			return nil, fmt.Errorf("kernel %q is not registered", m.Name)
		}

		if err := dev.SetKernel(m.At[0], m.At[1], k); err != nil {
			return nil, err
		}
	}

	return dev, nil
}
