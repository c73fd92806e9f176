package llm

import "fmt"

// Registry resolves backend identifiers to provider implementations.
type Registry struct {
	providers      map[string]Provider
	defaultBackend string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// RegisterProvider adds a provider implementation under a backend name.
// The first registered provider becomes the default.
func (r *Registry) RegisterProvider(backend string, p Provider) {
	r.providers[backend] = p
	if r.defaultBackend == "" {
		r.defaultBackend = backend
	}
}

// Resolve returns the provider for a backend name (default if empty).
func (r *Registry) Resolve(backend string) (Provider, error) {
	if backend == "" {
		backend = r.defaultBackend
	}

	p, ok := r.providers[backend]
	if !ok {
		return nil, fmt.Errorf("backend %q not registered", backend)
	}
	return p, nil
}
