// Package replay applies codec scripts to a store's graph
package replay

import (
	"fmt"

	"relgraph/internal/codec"
	"relgraph/internal/domain"
	"relgraph/internal/graph"
	"relgraph/internal/hub"
	"relgraph/internal/store"
)

// Runner replays scripts against one store and records the notifications
// they cause
type Runner struct {
	store         *store.Store
	notifications []hub.Notification
	unsubscribe   func()
}

// New creates a runner on s
func New(s *store.Store) *Runner {
	r := &Runner{store: s}
	r.unsubscribe = s.Hub().Subscribe(func(n hub.Notification) {
		r.notifications = append(r.notifications, n)
	})
	return r
}

// Close stops recording notifications
func (r *Runner) Close() {
	r.unsubscribe()
}

// Run applies every step in order and stops at the first failure
func (r *Runner) Run(script *codec.Script) error {
	return r.runSteps(r.store.Graph(), script.Steps, "steps")
}

func (r *Runner) runSteps(g *graph.Graph, steps []codec.Step, path string) error {
	for i, step := range steps {
		at := fmt.Sprintf("%s[%d]", path, i)
		if err := r.runStep(g, step, at); err != nil {
			return fmt.Errorf("%s (%s): %w", at, step.Op, err)
		}
	}
	return nil
}

func (r *Runner) runStep(g *graph.Graph, step codec.Step, at string) error {
	if step.Op == codec.OpBatch {
		return g.Batch(func() error {
			return r.runSteps(g, step.Steps, at+".steps")
		})
	}

	identity := r.store.Identity()
	id, err := identity.GetOrCreate(step.Resource)
	if err != nil {
		return err
	}
	related := make([]domain.Identifier, 0, len(step.Related))
	for _, ref := range step.Related {
		rid, err := identity.GetOrCreate(ref)
		if err != nil {
			return err
		}
		related = append(related, rid)
	}

	switch step.Op {
	case codec.OpPush:
		return g.Push(id, step.Field, *step.Payload)
	case codec.OpAdd:
		return g.Add(id, step.Field, related...)
	case codec.OpRemove:
		return g.Remove(id, step.Field, related...)
	case codec.OpReplace:
		return g.Replace(id, step.Field, related...)
	case codec.OpUnload:
		r.store.UnloadRecord(id)
		return nil
	case codec.OpRollback:
		return g.Rollback(id)
	case codec.OpCommit:
		return g.Commit(id)
	case codec.OpDelete:
		return g.DeleteRecord(id, step.IsNew)
	}
	return fmt.Errorf("unknown op %q", step.Op)
}

// Notifications returns what was dispatched so far, in order
func (r *Runner) Notifications() []hub.Notification {
	out := make([]hub.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// Snapshot collects the visible relationship data of every resource the graph
// holds together with the recorded notifications
func (r *Runner) Snapshot() (*codec.Snapshot, error) {
	g := r.store.Graph()
	snap := &codec.Snapshot{
		Resources:     []codec.ResourceSnapshot{},
		Notifications: r.Notifications(),
	}
	for _, id := range g.Identifiers() {
		fields := g.Fields(id)
		if len(fields) == 0 {
			continue
		}
		rs := codec.ResourceSnapshot{
			Identifier:    id,
			Relationships: make(map[string]domain.RelationshipData, len(fields)),
		}
		for _, field := range fields {
			data, err := g.GetData(id, field)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s.%s: %w", id, field, err)
			}
			rs.Relationships[field] = data
		}
		snap.Resources = append(snap.Resources, rs)
	}
	return snap, nil
}
