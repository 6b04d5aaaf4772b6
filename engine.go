package synbridge

import (
	"context"
	"time"

	"github.com/synian-app/synbridge/core"
	"github.com/synian-app/synbridge/session"
)

// Engine is the intent dispatcher and session state machine. It is safe
// for concurrent use after [Builder.Build]; events within one conversation
// are assumed to arrive serially, as voice platforms deliver them.
type Engine struct {
	config  Config
	core    CoreAPI
	store   session.Store
	audit   *auditDispatcher
	metrics *Metrics
}

// Handle dispatches one classified inbound event and returns the speech
// for the turn. It never panics outward and never surfaces raw backend
// errors: any unclassified failure is answered with the generic-error
// message, because a platform-level crash is a worse experience than an
// apology.
func (e *Engine) Handle(ctx context.Context, ev Event) (speech Speech) {
	defer func() {
		if r := recover(); r != nil {
			e.metricInc(MetricUnclassified)
			e.emitAudit(ctx, auditEventUnclassified, ev, false, "", ErrUnclassified, func() map[string]string {
				return map[string]string{"reason": "panic"}
			})
			speech = e.genericError(ev)
		}
	}()

	if e == nil || e.core == nil || e.store == nil {
		return e.genericError(ev)
	}
	if ev.ConversationID == "" {
		e.emitAudit(ctx, auditEventUnclassified, ev, false, "", ErrConversationMissing, nil)
		return e.genericError(ev)
	}

	switch ev.Intent {
	case IntentLaunch:
		return e.launch(ev)
	case IntentSubmitCode:
		return e.submitCode(ctx, ev)
	case IntentConverse:
		return e.converse(ctx, ev)
	case IntentCommand:
		return e.command(ctx, ev)
	case IntentStatus:
		return e.status(ctx, ev)
	case IntentHelp:
		return e.help(ctx, ev)
	case IntentCancel:
		return e.cancel(ctx, ev)
	case IntentExit:
		return e.exit(ctx, ev)
	case IntentSessionEnded:
		return e.sessionEnded(ctx, ev)
	case IntentFallback:
		return e.fallback(ev)
	default:
		e.metricInc(MetricUnclassified)
		e.emitAudit(ctx, auditEventUnclassified, ev, false, "", ErrUnclassified, func() map[string]string {
			return map[string]string{"reason": "unknown_intent"}
		})
		return e.genericError(ev)
	}
}

// Close drains and stops the audit dispatcher. The session store is owned
// by the caller (it may outlive the engine) and is not closed here.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped under
// drop-if-full buffering.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot deep-copies the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// loadRecord fetches the conversation's record; a nil record with nil
// error means no state exists yet.
func (e *Engine) loadRecord(ctx context.Context, ev Event) (*session.Record, error) {
	record, err := e.store.Get(ctx, ev.ConversationID)
	if err != nil {
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditEventStoreUnavailable, ev, false, "", err, nil)
		return nil, err
	}
	return record, nil
}

// checkExpiry applies the local expiry authority: a session id whose
// expiry is absent or elapsed is cleared and reported. It returns true
// when the record held a session that just expired. Runs at the start of
// every authenticated-path operation, not only on conversational turns.
func (e *Engine) checkExpiry(ctx context.Context, ev Event, record *session.Record) bool {
	if record == nil || record.SessionID == "" {
		return false
	}
	if record.Authenticated(time.Now()) {
		return false
	}

	expiredID := record.SessionID
	record.ClearAuth()
	if err := e.store.Save(ctx, record); err != nil {
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditEventStoreUnavailable, ev, false, expiredID, err, nil)
	}
	e.metricInc(MetricSessionExpiredLocal)
	e.emitAudit(ctx, auditEventSessionExpiredLocal, ev, true, expiredID, ErrSessionExpired, nil)
	return true
}

// requestContext builds the immutable per-call envelope. Constructed fresh
// per call; never persisted.
func (e *Engine) requestContext(ev Event, sessionID, mode string) core.RequestContext {
	return core.RequestContext{
		CompanyID:     e.config.Core.CompanyID,
		UserID:        e.config.Core.UserID,
		DeviceID:      ev.DeviceID,
		AlexaUserID:   ev.PlatformUserID,
		ApplicationID: ev.ApplicationID,
		SessionID:     sessionID,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Mode:          mode,
	}
}

// bridgeSpeech renders a bridge-voiced message in the request locale.
func (e *Engine) bridgeSpeech(ev Event, text, reprompt string) Speech {
	return Speech{
		Text:     text,
		Reprompt: reprompt,
		Language: requestLanguage(ev),
	}
}

// synianSpeech renders a Synian-voiced message using the session profile.
func (e *Engine) synianSpeech(record *session.Record, ev Event, text string) Speech {
	profile := sessionProfile(record, ev)
	return Speech{
		Text:     text,
		Language: profile.LanguageCode,
		Voice:    profile.VoiceID,
	}
}

// genericError is the apology of last resort. It must stay safe on a nil
// receiver: the recover in [Engine.Handle] calls it, and a second panic
// there would escape outward.
func (e *Engine) genericError(ev Event) Speech {
	if e == nil {
		msgs := defaultConfig().Messages
		return Speech{
			Text:     msgs.GenericError,
			Reprompt: msgs.RetryPrompt,
			Language: requestLanguage(ev),
		}
	}
	return e.bridgeSpeech(ev, e.config.Messages.GenericError, e.config.Messages.RetryPrompt)
}

func requestLanguage(ev Event) string {
	if ev.Locale != "" {
		return ev.Locale
	}
	return DefaultVoice.LanguageCode
}

// sessionProfile picks the voice profile precedence for Synian replies:
// the session's stored profile, else the resolver view of the request
// locale. Per-result Core overrides are applied to the record before this
// is called, so they participate through the stored profile.
func sessionProfile(record *session.Record, ev Event) VoiceProfile {
	if record != nil && record.VoiceID != "" {
		return VoiceProfile{LanguageCode: record.LanguageCode, VoiceID: record.VoiceID}
	}
	return ResolveVoice(ev.Locale)
}
