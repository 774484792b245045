package domain

// RelationshipKind is the declared cardinality of a relationship field
type RelationshipKind string

const (
	KindResource   RelationshipKind = "resource"   // to-one, "belongs-to"
	KindCollection RelationshipKind = "collection" // to-many, "has-many"
)

// Valid reports whether the kind is one a schema may declare
func (k RelationshipKind) Valid() bool {
	return k == KindResource || k == KindCollection
}

// InverseMode says how a relationship declared its inverse
type InverseMode int

const (
	InverseUndeclared InverseMode = iota // no inverse key in the schema
	InverseNone                          // inverse: null, one-directional
	InverseNamed                         // inverse: <field>
)

// Inverse is the tri-state inverse declaration of a relationship field
type Inverse struct {
	Mode InverseMode
	Name string
}

// NamedInverse declares the inverse field by name
func NamedInverse(name string) Inverse {
	return Inverse{Mode: InverseNamed, Name: name}
}

// NoInverse declares the relationship one-directional
func NoInverse() Inverse {
	return Inverse{Mode: InverseNone}
}

// IsNamed reports whether the inverse was declared with a field name
func (i Inverse) IsNamed() bool { return i.Mode == InverseNamed }

// IsNull reports whether the inverse was declared as null
func (i Inverse) IsNull() bool { return i.Mode == InverseNone }

// String renders the declaration the way a schema file spells it
func (i Inverse) String() string {
	switch i.Mode {
	case InverseNamed:
		return i.Name
	case InverseNone:
		return "null"
	}
	return "undeclared"
}

// Relationship is the schema service's descriptor for one relationship field
type Relationship struct {
	Name        string           `json:"name"`
	Kind        RelationshipKind `json:"kind"`
	RelatedType string           `json:"related_type"`
	Async       bool             `json:"async,omitempty"`
	Polymorphic bool             `json:"polymorphic,omitempty"`
	Inverse     Inverse          `json:"-"`
	// As names the abstract supertype this field satisfies when it is the
	// inverse of a polymorphic relationship.
	As string `json:"as,omitempty"`
}

// IsCollection reports whether the field is to-many
func (r Relationship) IsCollection() bool {
	return r.Kind == KindCollection
}

// Satisfies reports whether a resource of ownerType may sit on the far side of
// a relationship that declared relatedType, as seen from this field
func (r Relationship) Satisfies(ownerType, relatedType string) bool {
	return ownerType == relatedType || (r.As != "" && r.As == relatedType)
}
