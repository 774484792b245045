package domain

import (
	"encoding/json"
	"fmt"
)

// Links is the links member of a relationship object
type Links map[string]any

// Related returns the related link, accepting both the string form and the
// {"href": ...} object form
func (l Links) Related() string {
	return linkHref(l["related"])
}

// Self returns the self link
func (l Links) Self() string {
	return linkHref(l["self"])
}

func linkHref(v any) string {
	switch link := v.(type) {
	case string:
		return link
	case map[string]any:
		if href, ok := link["href"].(string); ok {
			return href
		}
	}
	return ""
}

// Meta is the meta member of a relationship object
type Meta map[string]any

// Data is the data member of a relationship object.
//
// The zero value means the member was omitted. Null, a single identifier and a
// list are the three present forms.
type Data struct {
	present bool
	many    bool
	one     *Identifier
	list    []Identifier
}

// Omitted returns data that leaves relationship state untouched
func Omitted() Data { return Data{} }

// Null returns present-but-empty to-one data
func Null() Data { return Data{present: true} }

// One returns to-one data pointing at id
func One(id Identifier) Data {
	return Data{present: true, one: &id}
}

// Many returns to-many data with the given members in order
func Many(ids ...Identifier) Data {
	list := make([]Identifier, len(ids))
	copy(list, ids)
	return Data{present: true, many: true, list: list}
}

// IsPresent reports whether the data member was supplied
func (d Data) IsPresent() bool { return d.present }

// IsNull reports whether the data member was supplied as null
func (d Data) IsNull() bool { return d.present && !d.many && d.one == nil }

// IsMany reports whether the data member is a list
func (d Data) IsMany() bool { return d.many }

// Single returns the to-one value, if any
func (d Data) Single() (Identifier, bool) {
	if d.one == nil {
		return Identifier{}, false
	}
	return *d.one, true
}

// List returns a copy of the members. A to-one value is returned as a one
// element list, null as an empty list.
func (d Data) List() []Identifier {
	if d.many {
		out := make([]Identifier, len(d.list))
		copy(out, d.list)
		return out
	}
	if d.one != nil {
		return []Identifier{*d.one}
	}
	return nil
}

// MarshalJSON encodes data as null, a resource identifier object or an array
func (d Data) MarshalJSON() ([]byte, error) {
	switch {
	case d.many:
		list := d.list
		if list == nil {
			list = []Identifier{}
		}
		return json.Marshal(list)
	case d.one != nil:
		return json.Marshal(d.one)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes null, a resource identifier object or an array.
// Identifiers decoded here are raw references and still need upgrading by the
// identity service.
func (d *Data) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.(type) {
	case nil:
		*d = Null()
	case []any:
		var list []Identifier
		if err := json.Unmarshal(b, &list); err != nil {
			return fmt.Errorf("decode data list: %w", err)
		}
		*d = Many(list...)
	case map[string]any:
		var one Identifier
		if err := json.Unmarshal(b, &one); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
		*d = One(one)
	default:
		return fmt.Errorf("data must be null, an object or an array")
	}
	return nil
}

// Payload is an inbound relationship object applied by a remote push
type Payload struct {
	Data  Data  `json:"data"`
	Links Links `json:"links,omitempty"`
	Meta  Meta  `json:"meta,omitempty"`
}

// UnmarshalJSON keeps an absent data member distinguishable from null
func (p *Payload) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data  json.RawMessage `json:"data"`
		Links Links           `json:"links"`
		Meta  Meta            `json:"meta"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Links = raw.Links
	p.Meta = raw.Meta
	p.Data = Omitted()
	if raw.Data != nil {
		if err := p.Data.UnmarshalJSON(raw.Data); err != nil {
			return err
		}
	}
	return nil
}

// RelationshipData is the externally consumable snapshot of an edge, shaped
// like a JSON:API relationship object
type RelationshipData struct {
	Data  Data
	Links Links
	Meta  Meta
}

// MarshalJSON omits data when the relationship was never loaded
func (r RelationshipData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3)
	if r.Data.IsPresent() {
		out["data"] = r.Data
	}
	if len(r.Links) > 0 {
		out["links"] = r.Links
	}
	if len(r.Meta) > 0 {
		out["meta"] = r.Meta
	}
	return json.Marshal(out)
}
