// Package graph tracks relationships between cached resources.
//
// A Graph owns one Edge per (identifier, field). Each edge keeps the state
// last confirmed by the server (remote) apart from pending client changes
// (local). Local mutations and remote pushes are mirrored onto the inverse
// edge of every related resource, so both ends of a relationship agree once
// an operation completes. Relationships without a declared inverse are
// tracked through implicit edges that exist only so unloading can clean up.
//
// Mirroring and change notifications are deferred while a Batch is open and
// run once when the outermost batch closes. An edge whose visible data ends
// the batch where it started produces no notification.
package graph
