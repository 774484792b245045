// Package store wires the identity cache, schema and notification hub into
// the capabilities a relationship graph runs on
package store

import (
	"log/slog"

	"relgraph/internal/domain"
	"relgraph/internal/graph"
	"relgraph/internal/hub"
	"relgraph/internal/identity"
	"relgraph/internal/logger"
)

// Store owns one relationship graph through the registry it was given
type Store struct {
	schema   graph.SchemaService
	identity *identity.Cache
	hub      *hub.Hub
	graphs   *graph.Registry
	log      *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithHub replaces the notification hub
func WithHub(h *hub.Hub) Option {
	return func(s *Store) { s.hub = h }
}

// WithIdentity replaces the identity cache
func WithIdentity(c *identity.Cache) Option {
	return func(s *Store) { s.identity = c }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a store backed by schema whose graph lives in graphs
func New(schema graph.SchemaService, graphs *graph.Registry, opts ...Option) *Store {
	s := &Store{schema: schema, graphs: graphs}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.identity == nil {
		s.identity = identity.NewCache()
	}
	if s.hub == nil {
		s.hub = hub.New(s.log)
	}
	return s
}

// Schema returns the schema service
func (s *Store) Schema() graph.SchemaService { return s.schema }

// Identity returns the identity service
func (s *Store) Identity() graph.IdentityService { return s.identity }

// NotifyChange forwards a graph change to the hub
func (s *Store) NotifyChange(id domain.Identifier, bucket, key string) {
	s.hub.Notify(id, bucket, key)
}

// Hub returns the notification hub
func (s *Store) Hub() *hub.Hub { return s.hub }

// Graph returns the store's graph, creating it on first use
func (s *Store) Graph() *graph.Graph { return s.graphs.For(s) }

// Identifier resolves a type and id to a stable identifier
func (s *Store) Identifier(typ, id string) (domain.Identifier, error) {
	return s.identity.GetOrCreate(domain.ResourceIdentifier{Type: typ, ID: id})
}

// CreateRecord allocates an identifier for a resource that has no server id
func (s *Store) CreateRecord(typ string) (domain.Identifier, error) {
	return s.identity.GetOrCreate(domain.ResourceIdentifier{Type: typ, LID: identity.NewLID(typ)})
}

// UnloadRecord drops id from the graph and forgets its identity
func (s *Store) UnloadRecord(id domain.Identifier) {
	if g, ok := s.graphs.Peek(s); ok {
		g.Unload(id)
	}
	s.identity.Forget(id)
}

// Destroy tears down the store's graph
func (s *Store) Destroy() {
	if s.graphs.Destroy(s) {
		s.log.Debug("graph destroyed", logger.Scope("store"))
	}
}
