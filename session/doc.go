// Package session stores per-conversation trust state for the Synian bridge.
//
// # Design
//
// A [Record] tracks whether one voice conversation has been granted access
// to Core conversational features: the Core session id and expiry, the
// consecutive failed-code counter, and an optional lockout deadline. Records
// are keyed by conversation id and carry a bounded inactivity lifetime, so
// an abandoned conversation never leaves trust state behind.
//
// Two drivers exist: an in-process map for single-instance deployments and
// platforms without cross-turn persistence, and a Redis driver whose key TTL
// is the inactivity window.
//
// # Architecture boundaries
//
// This package owns persistence and the state classification helpers on
// [Record]. State transitions (who may set or clear a session) belong to
// the engine in the root package.
package session
