package synbridge

import "errors"

var (
	// ErrInputMissing is returned internally when a required slot (code or
	// utterance) is absent; it is always recovered into a re-prompt.
	ErrInputMissing = errors.New("required input missing")
	// ErrAuthRejected is returned when Core explicitly denies the code.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrSessionLocked is returned while a lockout deadline is in the future.
	ErrSessionLocked = errors.New("authentication locked")
	// ErrSessionExpired is returned when a session is expired, whether
	// detected locally or signaled by Core.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotAuthenticated is returned when a relay operation arrives with
	// no established session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrConversationMissing is returned when an event carries no
	// conversation identifier.
	ErrConversationMissing = errors.New("conversation id missing")
	// ErrEngineNotReady is returned when the engine is used before Build.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrUnclassified marks any unexpected failure caught by the top-level
	// recovery; it never propagates to the platform.
	ErrUnclassified = errors.New("unclassified failure")
)
