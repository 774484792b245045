// Package codec reads replay scripts and writes graph snapshots
package codec

import (
	"fmt"
	"io"

	"relgraph/internal/domain"
	"relgraph/internal/hub"
)

// Step operations understood by the replay runner
const (
	OpPush     = "push"
	OpAdd      = "add"
	OpRemove   = "remove"
	OpReplace  = "replace"
	OpUnload   = "unload"
	OpRollback = "rollback"
	OpCommit   = "commit"
	OpDelete   = "delete"
	OpBatch    = "batch"
)

// Script is an ordered list of graph operations
type Script struct {
	Version string `json:"version,omitempty"`
	Steps   []Step `json:"steps"`
}

// Step is one operation of a script. Batch steps carry nested steps.
type Step struct {
	Op       string                      `json:"op"`
	Resource domain.ResourceIdentifier   `json:"resource"`
	Field    string                      `json:"field,omitempty"`
	Payload  *domain.Payload             `json:"payload,omitempty"`
	Related  []domain.ResourceIdentifier `json:"related,omitempty"`
	IsNew    bool                        `json:"is_new,omitempty"`
	Steps    []Step                      `json:"steps,omitempty"`
}

// Snapshot is the visible relationship state after a replay
type Snapshot struct {
	Resources     []ResourceSnapshot `json:"resources"`
	Notifications []hub.Notification `json:"notifications"`
}

// ResourceSnapshot holds the relationship objects of one resource
type ResourceSnapshot struct {
	Identifier    domain.Identifier                  `json:"identifier"`
	Relationships map[string]domain.RelationshipData `json:"relationships"`
}

// Importer interface for reading scripts from various formats
type Importer interface {
	Parse(r io.Reader) (*Script, error)
	Format() string
}

// Exporter interface for writing snapshots to various formats
type Exporter interface {
	Export(snapshot *Snapshot, w io.Writer) error
	Format() string
}

// Codec both imports scripts and exports snapshots
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered for format
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json", "":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Validate checks every step before anything is replayed
func (s *Script) Validate() error {
	return validateSteps(s.Steps, "steps")
}

func validateSteps(steps []Step, path string) error {
	for i, step := range steps {
		at := fmt.Sprintf("%s[%d]", path, i)
		switch step.Op {
		case OpBatch:
			if err := validateSteps(step.Steps, at+".steps"); err != nil {
				return err
			}
			continue
		case OpPush:
			if step.Payload == nil {
				return fmt.Errorf("%s: push needs a payload", at)
			}
		case OpAdd, OpRemove, OpReplace:
		case OpUnload, OpRollback, OpCommit, OpDelete:
			if !step.Resource.Valid() {
				return fmt.Errorf("%s: %s needs a resource", at, step.Op)
			}
			continue
		default:
			return fmt.Errorf("%s: unknown op %q", at, step.Op)
		}
		if !step.Resource.Valid() {
			return fmt.Errorf("%s: %s needs a resource", at, step.Op)
		}
		if step.Field == "" {
			return fmt.Errorf("%s: %s needs a field", at, step.Op)
		}
		for _, ref := range step.Related {
			if !ref.Valid() {
				return fmt.Errorf("%s: invalid related reference %s", at, ref)
			}
		}
	}
	return nil
}
