package synbridge

import (
	"context"
	"io"
	"strings"

	"github.com/synian-app/synbridge/core"
	internalaudit "github.com/synian-app/synbridge/internal/audit"
)

// Intent is the closed set of classified inbound events. The platform
// adapter (out of scope here) owns recognition; the engine dispatches on
// this enum exhaustively instead of comparing intent-name strings.
type Intent uint8

const (
	// IntentLaunch opens a conversation.
	IntentLaunch Intent = iota
	// IntentSubmitCode presents an authentication code. An event with no
	// code slot is the "ask me for the code" form of the same intent.
	IntentSubmitCode
	// IntentConverse relays an authenticated utterance to Core.
	IntentConverse
	// IntentCommand relays an authenticated command to Core.
	IntentCommand
	// IntentStatus probes Core availability; allowed unauthenticated.
	IntentStatus
	// IntentHelp asks what the bridge can do.
	IntentHelp
	// IntentCancel is the platform cancel/stop intent.
	IntentCancel
	// IntentExit leaves Synian mode explicitly.
	IntentExit
	// IntentSessionEnded is the platform's end-of-conversation notification.
	IntentSessionEnded
	// IntentFallback is anything the platform could not classify.
	IntentFallback
)

// String returns the audit-log name of the intent.
func (i Intent) String() string {
	switch i {
	case IntentLaunch:
		return "launch"
	case IntentSubmitCode:
		return "submit_code"
	case IntentConverse:
		return "converse"
	case IntentCommand:
		return "command"
	case IntentStatus:
		return "status"
	case IntentHelp:
		return "help"
	case IntentCancel:
		return "cancel"
	case IntentExit:
		return "exit"
	case IntentSessionEnded:
		return "session_ended"
	case IntentFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Event is one classified inbound turn from the voice platform.
type Event struct {
	// ConversationID scopes session state; required.
	ConversationID string
	// RequestID is a correlation id stamped by the adapter; audit-only.
	RequestID string
	// Locale is the platform-declared locale tag, possibly empty.
	Locale string
	// Intent is the classified intent.
	Intent Intent
	// Slots maps slot name to recognized value.
	Slots map[string]string

	DeviceID       string
	ApplicationID  string
	PlatformUserID string
}

// Slot returns the trimmed value of a named slot.
func (ev Event) Slot(name string) string {
	return strings.TrimSpace(ev.Slots[name])
}

// FirstSlot returns the first non-empty slot value, in unspecified order.
// Mirrors how the platform delivers single-slot intents under varying
// slot names.
func (ev Event) FirstSlot() string {
	for _, v := range ev.Slots {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Speech is the outbound reply for one turn. Language and Voice annotate
// the text for speech-markup rendering by the platform adapter; a non-empty
// Reprompt keeps the conversation open.
type Speech struct {
	Text     string
	Reprompt string
	Language string
	Voice    string
	// EndSession asks the platform to close the conversation.
	EndSession bool
}

// CoreAPI is the single capability the engine needs from the relay client.
// *core.Client satisfies it; tests substitute fakes.
type CoreAPI interface {
	Do(ctx context.Context, req core.Request) (*core.Result, error)
	Status(ctx context.Context) (*core.StatusResult, error)
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
