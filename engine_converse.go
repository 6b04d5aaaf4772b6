package synbridge

import (
	"context"

	"github.com/synian-app/synbridge/core"
	"github.com/synian-app/synbridge/session"
)

const (
	utteranceSlot = "texto"
	commandSlot   = "comando"
)

// converse relays one conversational turn to Core. Local expiry authority
// runs before the call: a turn on an expired session never reaches Core.
func (e *Engine) converse(ctx context.Context, ev Event) Speech {
	record, ok, refusal := e.authenticatedRecord(ctx, ev)
	if !ok {
		return refusal
	}

	utterance := ev.Slot(utteranceSlot)
	if utterance == "" {
		utterance = ev.FirstSlot()
	}
	if utterance == "" {
		e.emitAudit(ctx, auditEventTurnRefused, ev, false, record.SessionID, ErrInputMissing, nil)
		return e.synianPrompt(record, ev, e.config.Messages.UtteranceMissing, e.config.Messages.UtterancePrompt)
	}

	result, err := e.relay(ctx, core.PromptRequest(utterance, e.requestContext(ev, record.SessionID, core.ModeSynian)))
	if err != nil {
		e.emitAudit(ctx, auditEventCoreUnavailable, ev, false, record.SessionID, err, nil)
		return e.bridgeSpeech(ev, e.config.Messages.CoreDown, "")
	}

	if result.SessionExpired() {
		return e.remoteExpired(ctx, ev, record)
	}

	e.applyProfileOverride(ctx, ev, record, result)

	reply := result.SpokenReply()
	if reply == "" {
		reply = e.config.Messages.NoResponse
	}

	e.metricInc(MetricTurnRelayed)
	e.emitAudit(ctx, auditEventTurnRelayed, ev, true, record.SessionID, nil, nil)
	return e.synianPrompt(record, ev, reply, e.config.Messages.UtterancePrompt)
}

// command relays an imperative to Core. Unlike converse, the confirmation
// field wins over reply text, and an empty result still acknowledges.
func (e *Engine) command(ctx context.Context, ev Event) Speech {
	record, ok, refusal := e.authenticatedRecord(ctx, ev)
	if !ok {
		return refusal
	}

	cmd := ev.Slot(commandSlot)
	if cmd == "" {
		cmd = ev.FirstSlot()
	}
	if cmd == "" {
		e.emitAudit(ctx, auditEventTurnRefused, ev, false, record.SessionID, ErrInputMissing, nil)
		return e.synianPrompt(record, ev, e.config.Messages.CommandMissing, e.config.Messages.CommandPrompt)
	}

	result, err := e.relay(ctx, core.CommandRequest(cmd, e.requestContext(ev, record.SessionID, core.ModeSynian)))
	if err != nil {
		e.emitAudit(ctx, auditEventCoreUnavailable, ev, false, record.SessionID, err, nil)
		return e.bridgeSpeech(ev, e.config.Messages.CoreDown, "")
	}

	if result.SessionExpired() {
		return e.remoteExpired(ctx, ev, record)
	}

	e.applyProfileOverride(ctx, ev, record, result)

	reply := result.CommandReply()
	if reply == "" {
		reply = e.config.Messages.CommandSent
	}

	e.metricInc(MetricCommandRelayed)
	e.emitAudit(ctx, auditEventCommandRelayed, ev, true, record.SessionID, nil, nil)
	return e.synianPrompt(record, ev, reply, e.config.Messages.UtterancePrompt)
}

// authenticatedRecord gates the relay paths. ok=false carries the refusal
// speech for the caller to return as-is.
func (e *Engine) authenticatedRecord(ctx context.Context, ev Event) (record *session.Record, ok bool, refusal Speech) {
	record, err := e.loadRecord(ctx, ev)
	if err != nil {
		return nil, false, e.bridgeSpeech(ev, e.config.Messages.CoreDown, "")
	}
	if record == nil || record.SessionID == "" {
		e.metricInc(MetricTurnUnauthenticated)
		e.emitAudit(ctx, auditEventTurnRefused, ev, false, "", ErrNotAuthenticated, nil)
		return nil, false, e.bridgeSpeech(ev, e.config.Messages.NotAuthenticated, e.config.Messages.AskCode)
	}
	if e.checkExpiry(ctx, ev, record) {
		return nil, false, e.bridgeSpeech(ev, e.config.Messages.Expired, e.config.Messages.AskCode)
	}
	return record, true, Speech{}
}

// remoteExpired honors Core's authority over its own sessions: a
// SESSION_EXPIRED result ends the local session even if the stored expiry
// has not elapsed yet.
func (e *Engine) remoteExpired(ctx context.Context, ev Event, record *session.Record) Speech {
	expiredID := record.SessionID
	record.ClearAuth()
	e.saveRecord(ctx, ev, record)
	e.metricInc(MetricSessionExpiredRemote)
	e.emitAudit(ctx, auditEventSessionExpiredRemote, ev, true, expiredID, ErrSessionExpired, nil)
	return e.bridgeSpeech(ev, e.config.Messages.Expired, e.config.Messages.AskCode)
}

// applyProfileOverride persists a per-result language or voice override so
// it holds for the remainder of the session.
func (e *Engine) applyProfileOverride(ctx context.Context, ev Event, record *session.Record, result *core.Result) {
	changed := false
	if result.Language != "" {
		profile := ResolveVoice(result.Language)
		if profile.LanguageCode != record.LanguageCode {
			record.LanguageCode = profile.LanguageCode
			record.VoiceID = profile.VoiceID
			changed = true
		}
	}
	if result.VoiceProfile != "" && result.VoiceProfile != record.VoiceID {
		record.VoiceID = result.VoiceProfile
		changed = true
	}
	if changed {
		e.saveRecord(ctx, ev, record)
	}
}

// synianPrompt is synianSpeech plus a reprompt to keep the session open.
func (e *Engine) synianPrompt(record *session.Record, ev Event, text, reprompt string) Speech {
	sp := e.synianSpeech(record, ev, text)
	sp.Reprompt = reprompt
	return sp
}
