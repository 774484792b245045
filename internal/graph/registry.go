package graph

import "sync"

// Registry maps each store's capabilities to the one Graph serving it. The
// owning application creates the table and tears graphs down with their store.
type Registry struct {
	mu     sync.Mutex
	graphs map[Capabilities]*Graph
	opts   Options
}

// NewRegistry creates an empty registry whose graphs share opts
func NewRegistry(opts Options) *Registry {
	return &Registry{
		graphs: make(map[Capabilities]*Graph),
		opts:   opts,
	}
}

// For returns the graph of caps, creating it on first use
func (r *Registry) For(caps Capabilities) *Graph {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.graphs[caps]; ok {
		return g
	}
	g := New(caps, r.opts)
	r.graphs[caps] = g
	return g
}

// Peek returns the graph of caps without creating one
func (r *Registry) Peek(caps Capabilities) (*Graph, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.graphs[caps]
	return g, ok
}

// Destroy tears down the graph of caps. It reports whether one existed.
func (r *Registry) Destroy(caps Capabilities) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.graphs[caps]
	if !ok {
		return false
	}
	g.destroy()
	delete(r.graphs, caps)
	return true
}

// Len returns the number of live graphs
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.graphs)
}
