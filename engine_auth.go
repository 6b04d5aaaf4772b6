package synbridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/synian-app/synbridge/core"
	"github.com/synian-app/synbridge/session"
)

// codeSlot is the slot name the interaction model uses for the TOTP code.
const codeSlot = "clave"

// submitCode runs one step of the authentication state machine:
//
//	NoSession → Authenticating → {Authenticated | Rejected | Locked}
//
// Order matters: the lockout check precedes any Core call so a lockout
// cannot be bypassed by volume of attempts, and an absent code is a
// platform misrecognition that must not consume the retry budget.
func (e *Engine) submitCode(ctx context.Context, ev Event) Speech {
	record, err := e.loadRecord(ctx, ev)
	if err != nil {
		return e.bridgeSpeech(ev, e.config.Messages.CoreDown, "")
	}
	if record == nil {
		record = &session.Record{ConversationID: ev.ConversationID}
	}

	// A stale session from an earlier authentication is cleared before
	// re-authenticating; no expiry notice, since the user is already
	// presenting a new code.
	e.checkExpiry(ctx, ev, record)

	now := time.Now()
	if record.Locked(now) {
		e.metricInc(MetricAuthLockedRefused)
		e.emitAudit(ctx, auditEventAuthLockedRefused, ev, false, "", ErrSessionLocked, func() map[string]string {
			return map[string]string{"locked_until": record.LockedUntil.UTC().Format(time.RFC3339)}
		})
		return e.bridgeSpeech(ev, e.config.Messages.Locked, "")
	}

	code := ev.Slot(codeSlot)
	if code == "" {
		code = ev.FirstSlot()
	}
	if code == "" {
		e.metricInc(MetricAuthCodeMissing)
		e.emitAudit(ctx, auditEventAuthCodeMissing, ev, false, "", ErrInputMissing, nil)
		return e.bridgeSpeech(ev, e.config.Messages.CodeMisheard, e.config.Messages.CodeMisheard)
	}

	result, err := e.relay(ctx, core.AuthRequest(code, e.requestContext(ev, "", "")))
	if err != nil {
		// Infrastructure failure must not consume the retry budget; the
		// record is left exactly as loaded.
		e.emitAudit(ctx, auditEventCoreUnavailable, ev, false, "", err, nil)
		return e.bridgeSpeech(ev, e.config.Messages.CoreDown, "")
	}

	if result.OK() {
		return e.authSucceeded(ctx, ev, record, result)
	}
	return e.authRejected(ctx, ev, record)
}

func (e *Engine) authSucceeded(ctx context.Context, ev Event, record *session.Record, result *core.Result) Speech {
	// A success with no usable expiry is treated as already expired, never
	// as a session that lives forever.
	if result.ExpiresAt.IsZero() || !result.ExpiresAt.After(time.Now()) {
		record.ClearAuth()
		record.AuthAttempts = 0
		record.LockedUntil = time.Time{}
		e.saveRecord(ctx, ev, record)
		e.metricInc(MetricSessionExpiredLocal)
		e.emitAudit(ctx, auditEventSessionExpiredLocal, ev, false, result.SessionID, ErrSessionExpired, func() map[string]string {
			return map[string]string{"reason": "no_expiry_on_auth"}
		})
		return e.bridgeSpeech(ev, e.config.Messages.Expired, "")
	}

	language := result.Language
	if language == "" {
		language = requestLanguage(ev)
	}
	profile := ResolveVoice(language)
	voice := result.VoiceProfile
	if voice == "" {
		voice = profile.VoiceID
	}

	record.SessionID = result.SessionID
	record.ExpiresAt = result.ExpiresAt
	record.AuthAttempts = 0
	record.LockedUntil = time.Time{}
	record.LanguageCode = profile.LanguageCode
	record.VoiceID = voice
	record.PreferredName = result.PreferredName

	if err := e.saveRecord(ctx, ev, record); err != nil {
		// Without persisted state the greeting would promise a session the
		// next turn cannot see.
		return e.bridgeSpeech(ev, e.config.Messages.CoreDown, "")
	}

	e.metricInc(MetricAuthSuccess)
	e.emitAudit(ctx, auditEventAuthSuccess, ev, true, record.SessionID, nil, nil)

	greeting := result.SpokenReply()
	if greeting == "" {
		if name := strings.TrimSpace(record.PreferredName); name != "" {
			greeting = fmt.Sprintf(e.config.Messages.Greeting, name)
		} else {
			greeting = e.config.Messages.GreetingNameless
		}
	}
	return e.synianSpeech(record, ev, greeting)
}

func (e *Engine) authRejected(ctx context.Context, ev Event, record *session.Record) Speech {
	record.AuthAttempts++

	if record.AuthAttempts >= e.config.Auth.MaxAttempts {
		// Exhausting the budget transitions to Locked and resets the
		// counter in the same step.
		record.AuthAttempts = 0
		record.ClearAuth()

		switch e.config.Auth.LockoutPolicy {
		case LockoutPolicyReset:
			if err := e.store.Delete(ctx, ev.ConversationID); err != nil {
				e.metricInc(MetricStoreUnavailable)
				e.emitAudit(ctx, auditEventStoreUnavailable, ev, false, "", err, nil)
			}
		default:
			record.LockedUntil = time.Now().Add(e.config.Auth.LockoutCooldown)
			e.saveRecord(ctx, ev, record)
		}

		e.metricInc(MetricAuthLockout)
		e.emitAudit(ctx, auditEventAuthLockout, ev, false, "", ErrAuthRejected, nil)
		return e.bridgeSpeech(ev, e.config.Messages.Lockout, "")
	}

	if err := e.saveRecord(ctx, ev, record); err != nil {
		return e.bridgeSpeech(ev, e.config.Messages.CoreDown, "")
	}

	e.metricInc(MetricAuthRejected)
	e.emitAudit(ctx, auditEventAuthRejected, ev, false, "", ErrAuthRejected, func() map[string]string {
		return map[string]string{"attempts": fmt.Sprintf("%d", record.AuthAttempts)}
	})
	return e.bridgeSpeech(ev, e.config.Messages.RetryCode, e.config.Messages.RetryCode)
}

// relay performs one timed Core round trip, folding transport failures
// into [core.ErrUnavailable] accounting.
func (e *Engine) relay(ctx context.Context, req core.Request) (*core.Result, error) {
	start := time.Now()
	result, err := e.core.Do(ctx, req)
	e.metrics.Observe(MetricRelayLatency, time.Since(start))
	if err != nil {
		e.metricInc(MetricCoreUnavailable)
		return nil, err
	}
	return result, nil
}

func (e *Engine) saveRecord(ctx context.Context, ev Event, record *session.Record) error {
	if err := e.store.Save(ctx, record); err != nil {
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditEventStoreUnavailable, ev, false, record.SessionID, err, nil)
		return err
	}
	return nil
}
