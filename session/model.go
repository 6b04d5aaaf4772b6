package session

import "time"

// State classifies a record into exactly one trust state at a given instant.
type State uint8

const (
	// StateNone means no Core session exists and no attempt is in flight.
	StateNone State = iota
	// StateAuthenticating means at least one failed code submission has been
	// recorded but the retry budget is not exhausted.
	StateAuthenticating
	// StateAuthenticated means a Core session id is present and unexpired.
	StateAuthenticated
	// StateLocked means code submissions are refused until LockedUntil passes.
	StateLocked
)

// Record is the per-conversation trust state persisted between turns.
//
// Record instances are value-copied in and out of stores; mutating a Record
// returned by [Store.Get] has no effect until it is saved back.
type Record struct {
	ConversationID string    `json:"conversation_id"`
	SessionID      string    `json:"session_id,omitempty"`
	ExpiresAt      time.Time `json:"expires_at,omitzero"`
	AuthAttempts   int       `json:"auth_attempts,omitempty"`
	LockedUntil    time.Time `json:"locked_until,omitzero"`
	LanguageCode   string    `json:"language_code,omitempty"`
	VoiceID        string    `json:"voice_id,omitempty"`
	PreferredName  string    `json:"preferred_name,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Authenticated reports whether the record carries a live Core session at
// the given instant. A session id with a zero or elapsed expiry is treated
// as already expired, never as "forever".
func (r *Record) Authenticated(now time.Time) bool {
	if r == nil || r.SessionID == "" {
		return false
	}
	return !r.ExpiresAt.IsZero() && now.Before(r.ExpiresAt)
}

// Locked reports whether code submissions must be refused outright.
func (r *Record) Locked(now time.Time) bool {
	return r != nil && !r.LockedUntil.IsZero() && now.Before(r.LockedUntil)
}

// StateAt returns the single trust state describing the record at now.
func (r *Record) StateAt(now time.Time) State {
	switch {
	case r == nil:
		return StateNone
	case r.Locked(now):
		return StateLocked
	case r.Authenticated(now):
		return StateAuthenticated
	case r.AuthAttempts > 0:
		return StateAuthenticating
	default:
		return StateNone
	}
}

// ClearAuth drops the Core session identity and expiry, returning the record
// to the unauthenticated state. Retry counters and locale are kept.
func (r *Record) ClearAuth() {
	r.SessionID = ""
	r.ExpiresAt = time.Time{}
	r.PreferredName = ""
}
