package graph

import (
	"errors"
	"fmt"

	"relgraph/internal/domain"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	// ErrSchemaInconsistency is returned when relationship declarations are
	// missing, ambiguous or contradict each other.
	ErrSchemaInconsistency = errors.New("relgraph: schema inconsistency")

	// ErrPolymorphicTypeViolation is returned when a related resource does not
	// satisfy the abstract type of a polymorphic relationship.
	ErrPolymorphicTypeViolation = errors.New("relgraph: polymorphic type violation")

	// ErrInvariantViolation marks an internal consistency failure, usually a
	// schema authoring bug that slipped past resolution.
	ErrInvariantViolation = errors.New("relgraph: invariant violation")

	// ErrImplicitEdge is returned when implicit bookkeeping is asked for
	// externally visible data.
	ErrImplicitEdge = errors.New("relgraph: implicit edges are not externally visible")

	// ErrUnsupportedOperation is returned for a mutation the edge kind cannot apply.
	ErrUnsupportedOperation = errors.New("relgraph: unsupported operation")
)

// SchemaInconsistencyError describes a relationship declaration that cannot be
// resolved into an edge definition.
type SchemaInconsistencyError struct {
	Type   string
	Field  string
	Reason string
}

// Error returns the error string.
func (e *SchemaInconsistencyError) Error() string {
	return fmt.Sprintf("relgraph: schema inconsistency for %s.%s: %s", e.Type, e.Field, e.Reason)
}

// Is reports whether the target error matches ErrSchemaInconsistency.
func (e *SchemaInconsistencyError) Is(err error) bool {
	return err == ErrSchemaInconsistency
}

func schemaErrorf(typ, field, format string, args ...any) *SchemaInconsistencyError {
	return &SchemaInconsistencyError{Type: typ, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsSchemaInconsistency returns true if the error is a SchemaInconsistencyError.
func IsSchemaInconsistency(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaInconsistencyError
	return errors.As(err, &e) || errors.Is(err, ErrSchemaInconsistency)
}

// PolymorphicTypeViolationError reports a related resource whose schema does
// not declare the supertype a polymorphic relationship expects.
type PolymorphicTypeViolationError struct {
	Owner    domain.Identifier
	Field    string
	Expected string // abstract type declared by the relationship
	Actual   string // concrete type of the offending resource
	Related  domain.Identifier
}

// Error returns the error string.
func (e *PolymorphicTypeViolationError) Error() string {
	return fmt.Sprintf("relgraph: %s.%s expects a %q but %s of type %q does not declare as: %q on the inverse",
		e.Owner, e.Field, e.Expected, e.Related, e.Actual, e.Expected)
}

// Is reports whether the target error matches ErrPolymorphicTypeViolation.
func (e *PolymorphicTypeViolationError) Is(err error) bool {
	return err == ErrPolymorphicTypeViolation
}

// IsPolymorphicTypeViolation returns true if the error is a PolymorphicTypeViolationError.
func IsPolymorphicTypeViolation(err error) bool {
	if err == nil {
		return false
	}
	var e *PolymorphicTypeViolationError
	return errors.As(err, &e) || errors.Is(err, ErrPolymorphicTypeViolation)
}

// InvariantViolationError is raised by debug assertions.
type InvariantViolationError struct {
	Identifier domain.Identifier
	Field      string
	Detail     string
}

// Error returns the error string.
func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("relgraph: invariant violated on %s.%s: %s", e.Identifier, e.Field, e.Detail)
}

// Is reports whether the target error matches ErrInvariantViolation.
func (e *InvariantViolationError) Is(err error) bool {
	return err == ErrInvariantViolation
}

// IsInvariantViolation returns true if the error is an InvariantViolationError.
func IsInvariantViolation(err error) bool {
	if err == nil {
		return false
	}
	var e *InvariantViolationError
	return errors.As(err, &e) || errors.Is(err, ErrInvariantViolation)
}
