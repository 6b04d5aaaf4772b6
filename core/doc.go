// Package core is the relay client for the Synian Core conversational
// backend.
//
// # Design
//
// One call, one round trip: [Client.Do] posts a [Request] (authentication,
// conversational, command, or end-of-session payload) with the immutable
// per-call [RequestContext] envelope and decodes a typed [Result]. The
// client holds no session state and never retries; a failed conversational
// turn must be reported once, not replayed against a backend with side
// effects.
//
// # What this package must NOT do
//
//   - Persist anything between calls.
//   - Interpret trust state; expiry and lockout decisions belong to the
//     engine in the root package.
//   - Surface raw Core error payloads; failures collapse into
//     [ErrUnavailable] with a short diagnostic.
package core
