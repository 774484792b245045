// Package domain defines the value types shared by the relationship graph and
// its collaborators.
//
// # Identity
//
// Identifier is the stable identity of a cached resource and is comparable, so
// it is used directly as a map key. ResourceIdentifier is the raw {type, id,
// lid} form found in payloads before the identity service upgrades it.
//
// # Schema descriptors
//
// Relationship describes one declared relationship field. Its Inverse is
// tri-state: undeclared, declared null (one-directional) or a named field.
//
// # Payloads
//
// Payload is an inbound relationship object. Its Data keeps an omitted data
// member distinct from an explicit null, since the two mean different things
// to a remote push. RelationshipData is the outbound snapshot shape.
package domain
