// Package synbridge is the intent dispatcher that gates a Synian Core
// conversation behind short-lived code authentication. Voice platform
// adapters classify inbound requests into [Event] values; the [Engine]
// resolves session state, runs the auth state machine, relays
// conversational turns to Core, and returns a [Speech] ready for the
// adapter to render.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]; events within a single
// conversation are expected to arrive serially, as voice platforms
// deliver them.
//
// # Architecture boundaries
//
// synbridge is the public surface. It exposes [Engine], [Builder],
// [Config], [Event], [Speech], and the audit/metrics value types. The
// Core wire protocol lives in the core sub-package, conversation state
// in session, and audit sinks in internal/audit.
//
// # What this package must NOT do
//
//   - Speak any platform wire format (Alexa envelopes, SSML rendering);
//     that is the adapter's job.
//   - Log or persist authentication codes, raw Core payloads, or
//     transport errors. Audit events carry redacted codes only.
//   - Surface a raw error to the platform: every failure folds into a
//     spoken message from [MessageConfig].
package synbridge
