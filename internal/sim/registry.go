package sim

import (
	"fmt"
	"sort"
)

// Factory constructs a Simulator instance for one tool family.
type Factory interface {
	// Name is the key users select the simulator by.
	Name() string

	// Create locates the tool and returns a ready adapter. It returns a
	// *ToolNotFoundError when no executable can be located.
	Create(opts Options) (Simulator, error)
}

// Module is the interface every adapter package implements to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the simulator factories compiled into the binary.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Registering two factories under one name is a
// programmer error.
func (r *Registry) Register(f Factory) {
	if _, exists := r.factories[f.Name()]; exists {
		panic(fmt.Sprintf("simulator factory %q registered twice", f.Name()))
	}
	r.factories[f.Name()] = f
}

// Names returns the registered simulator names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create instantiates the named simulator.
func (r *Registry) Create(name string, opts Options) (Simulator, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown simulator %q (available: %v)", name, r.Names())
	}
	if opts.Runner == nil {
		opts.Runner = NewExecRunner()
	}
	return factory.Create(opts)
}
