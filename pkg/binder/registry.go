package binder

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-formdispatch/pkg/render"
)

// RunnableHost is a host the command can select by name and run.
type RunnableHost interface {
	Host
	Name() string
	Surface() render.Surface
	Run(ctx context.Context) error
}

// Registry stores hosts by name.
type Registry struct {
	mu    sync.RWMutex
	hosts map[string]RunnableHost
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{hosts: make(map[string]RunnableHost)}
}

// Register adds a host by its Name(). Duplicate names return an error.
func (r *Registry) Register(host RunnableHost) error {
	if host == nil {
		return fmt.Errorf("binder: host is required")
	}
	name := host.Name()
	if name == "" {
		return fmt.Errorf("binder: host name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.hosts[name]; exists {
		return fmt.Errorf("binder: host %q already registered", name)
	}
	r.hosts[name] = host
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(host RunnableHost) {
	if err := r.Register(host); err != nil {
		panic(err)
	}
}

// Get retrieves a host by name.
func (r *Registry) Get(name string) (RunnableHost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	host, ok := r.hosts[name]
	if !ok {
		return nil, fmt.Errorf("binder: host %q not found", name)
	}
	return host, nil
}

// List returns the sorted host names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hosts))
	for name := range r.hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
