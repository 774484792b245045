// Package identity hands out stable resource identifiers
package identity

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"relgraph/internal/domain"
)

// ErrInvalidIdentifier is returned for references without a type or without
// both id and lid
var ErrInvalidIdentifier = errors.New("identity: invalid resource identifier")

type typedID struct {
	typ string
	id  string
}

// Cache is an in-memory identity service. Equal references always resolve
// to the same Identifier value.
type Cache struct {
	mu    sync.Mutex
	byLID map[string]domain.Identifier
	byID  map[typedID]domain.Identifier

	// server ids assigned after a client-created identifier was handed out
	assigned map[string]string
}

// NewCache creates an empty identity cache
func NewCache() *Cache {
	return &Cache{
		byLID: make(map[string]domain.Identifier),
		byID:  make(map[typedID]domain.Identifier),

		assigned: make(map[string]string),
	}
}

// GetOrCreate returns the identifier for ref, allocating a lid the first time
// a type and id pair is seen
func (c *Cache) GetOrCreate(ref domain.ResourceIdentifier) (domain.Identifier, error) {
	if !ref.Valid() {
		return domain.Identifier{}, fmt.Errorf("%w: %+v", ErrInvalidIdentifier, ref)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ref.LID != "" {
		if id, ok := c.byLID[ref.LID]; ok {
			if id.Type != ref.Type {
				return domain.Identifier{}, fmt.Errorf("%w: lid %s belongs to type %s, not %s",
					ErrInvalidIdentifier, ref.LID, id.Type, ref.Type)
			}
			if id.ID == "" && ref.ID != "" {
				return c.assignID(id, ref.ID)
			}
			return id, nil
		}
	}
	if ref.ID != "" {
		if id, ok := c.byID[typedID{ref.Type, ref.ID}]; ok {
			return id, nil
		}
	}

	lid := ref.LID
	if lid == "" {
		lid = NewLID(ref.Type)
	}
	id := domain.Identifier{Type: ref.Type, ID: ref.ID, LID: lid}
	c.byLID[lid] = id
	if id.ID != "" {
		c.byID[typedID{id.Type, id.ID}] = id
	}
	return id, nil
}

// assignID binds the server id of a client-created resource to the
// identifier already handed out for its lid. The Identifier value itself never
// changes, so lookups by the server id resolve to it as well.
func (c *Cache) assignID(id domain.Identifier, serverID string) (domain.Identifier, error) {
	if prev, ok := c.assigned[id.LID]; ok {
		if prev != serverID {
			return domain.Identifier{}, fmt.Errorf("%w: lid %s already has server id %s, not %s",
				ErrInvalidIdentifier, id.LID, prev, serverID)
		}
		return id, nil
	}
	key := typedID{id.Type, serverID}
	if other, ok := c.byID[key]; ok && other.LID != id.LID {
		return domain.Identifier{}, fmt.Errorf("%w: %s:%s is already bound to lid %s",
			ErrInvalidIdentifier, id.Type, serverID, other.LID)
	}
	c.assigned[id.LID] = serverID
	c.byID[key] = id
	return id, nil
}

// ServerID returns the server id of id, including one assigned after the
// identifier was created
func (c *Cache) ServerID(id domain.Identifier) (string, bool) {
	if id.ID != "" {
		return id.ID, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	serverID, ok := c.assigned[id.LID]
	return serverID, ok
}

// Peek looks up a reference without allocating
func (c *Cache) Peek(ref domain.ResourceIdentifier) (domain.Identifier, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ref.LID != "" {
		id, ok := c.byLID[ref.LID]
		return id, ok
	}
	id, ok := c.byID[typedID{ref.Type, ref.ID}]
	return id, ok
}

// Forget drops id from the cache
func (c *Cache) Forget(id domain.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byLID, id.LID)
	if id.ID != "" {
		delete(c.byID, typedID{id.Type, id.ID})
	}
	if serverID, ok := c.assigned[id.LID]; ok {
		delete(c.byID, typedID{id.Type, serverID})
		delete(c.assigned, id.LID)
	}
}

// Len returns the number of known identifiers
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byLID)
}

// NewLID allocates a client-local id for typ
func NewLID(typ string) string {
	return "@lid:" + typ + "-" + uuid.NewString()
}
