package provider

import "fmt"

// Registry holds the configured provider flows keyed by provider key. It
// performs no auth logic itself.
type Registry struct {
	flows map[string]Flow
}

// NewRegistry registers the given flows by key. Keys must be unique.
func NewRegistry(list ...Flow) *Registry {
	m := make(map[string]Flow, len(list))
	for _, f := range list {
		m[f.Key()] = f
	}
	return &Registry{flows: m}
}

// Get returns the flow for a provider key, or an error if not registered.
func (r *Registry) Get(key string) (Flow, error) {
	f, ok := r.flows[key]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", key)
	}
	return f, nil
}
