// Package audit implements async event dispatching for the bridge's
// security- and relay-relevant operations.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Event]: structured record with timestamp, type, conversation, session, metadata.
//
// # Architecture boundaries
//
// This package owns the event model and sink delivery. It does NOT decide which
// events to emit; that responsibility belongs to the Engine and its intent flows.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import synbridge or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
