package domain

import "fmt"

// Identifier is the stable identity of a cached resource.
// Values are produced by the identity service; two equal values always
// denote the same resource, so an Identifier is safe to use as a map key.
type Identifier struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	LID  string `json:"lid"`
}

// String renders the identifier for logs and error messages
func (i Identifier) String() string {
	if i.ID != "" {
		return fmt.Sprintf("%s:%s", i.Type, i.ID)
	}
	return fmt.Sprintf("%s:%s", i.Type, i.LID)
}

// IsZero reports whether the identifier is the zero value
func (i Identifier) IsZero() bool {
	return i == Identifier{}
}

// Ref converts the identifier back to its raw reference form
func (i Identifier) Ref() ResourceIdentifier {
	return ResourceIdentifier{Type: i.Type, ID: i.ID, LID: i.LID}
}

// ResourceIdentifier is a raw {type, id, lid} reference as it appears in a
// relationship payload. It becomes an Identifier once the identity service
// has upgraded it.
type ResourceIdentifier struct {
	Type string `json:"type" yaml:"type"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	LID  string `json:"lid,omitempty" yaml:"lid,omitempty"`
}

// Valid reports whether the reference carries enough information to be resolved
func (r ResourceIdentifier) Valid() bool {
	return r.Type != "" && (r.ID != "" || r.LID != "")
}

// String renders the reference for logs and error messages
func (r ResourceIdentifier) String() string {
	if r.ID != "" {
		return fmt.Sprintf("%s:%s", r.Type, r.ID)
	}
	return fmt.Sprintf("%s:%s", r.Type, r.LID)
}
