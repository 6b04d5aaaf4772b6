package synbridge

import (
	"context"
	"time"

	"github.com/synian-app/synbridge/core"
)

// launch greets a new conversation and invites authentication. Stateless:
// any stale record is dealt with lazily by the next stateful intent.
func (e *Engine) launch(ev Event) Speech {
	return e.bridgeSpeech(ev, e.config.Messages.Welcome, e.config.Messages.WelcomeReprompt)
}

func (e *Engine) help(ctx context.Context, ev Event) Speech {
	record, err := e.loadRecord(ctx, ev)
	if err != nil {
		return e.bridgeSpeech(ev, e.config.Messages.Help, e.config.Messages.AskCode)
	}
	if e.checkExpiry(ctx, ev, record) {
		return e.bridgeSpeech(ev, e.config.Messages.Expired, e.config.Messages.AskCode)
	}
	if record != nil && record.Authenticated(time.Now()) {
		return e.synianPrompt(record, ev, e.config.Messages.Help, e.config.Messages.UtterancePrompt)
	}
	return e.bridgeSpeech(ev, e.config.Messages.Help, e.config.Messages.AskCode)
}

// cancel behaves exactly like exit; voice platforms treat the two as
// interchangeable stop requests.
func (e *Engine) cancel(ctx context.Context, ev Event) Speech {
	return e.exit(ctx, ev)
}

// exit ends the session unconditionally. The Core notification is
// best-effort: its failure is audited but never blocks the local teardown,
// because the user asked to leave and leaving must always work.
func (e *Engine) exit(ctx context.Context, ev Event) Speech {
	e.endSession(ctx, ev)
	return Speech{
		Text:       e.config.Messages.Goodbye,
		Language:   requestLanguage(ev),
		EndSession: true,
	}
}

// sessionEnded handles the platform-initiated teardown. The platform
// discards any response, so no speech is rendered.
func (e *Engine) sessionEnded(ctx context.Context, ev Event) Speech {
	e.endSession(ctx, ev)
	return Speech{EndSession: true}
}

func (e *Engine) fallback(ev Event) Speech {
	return e.bridgeSpeech(ev, e.config.Messages.Fallback, e.config.Messages.RetryPrompt)
}

// endSession notifies Core of the teardown when a live session exists,
// then clears local auth state. Clearing happens regardless of the
// notification outcome.
func (e *Engine) endSession(ctx context.Context, ev Event) {
	record, err := e.loadRecord(ctx, ev)
	if err != nil || record == nil {
		return
	}

	if record.SessionID != "" && record.Authenticated(time.Now()) {
		if _, err := e.relay(ctx, core.EndSessionRequest(e.requestContext(ev, record.SessionID, ""))); err != nil {
			e.emitAudit(ctx, auditEventExitNotifyFailed, ev, false, record.SessionID, err, nil)
		}
	}

	if record.SessionID == "" {
		return
	}
	endedID := record.SessionID
	record.ClearAuth()
	e.saveRecord(ctx, ev, record)
	e.metricInc(MetricSessionEnded)
	e.emitAudit(ctx, auditEventSessionEnded, ev, true, endedID, nil, nil)
}
