package synbridge

import (
	"context"
	"errors"
	"time"

	"github.com/synian-app/synbridge/core"
	"github.com/synian-app/synbridge/session"
)

const (
	auditEventAuthSuccess          = "auth_success"
	auditEventAuthRejected         = "auth_rejected"
	auditEventAuthLockout          = "auth_lockout"
	auditEventAuthLockedRefused    = "auth_locked_refused"
	auditEventAuthCodeMissing      = "auth_code_missing"
	auditEventTurnRelayed          = "turn_relayed"
	auditEventTurnRefused          = "turn_refused"
	auditEventCommandRelayed       = "command_relayed"
	auditEventSessionExpiredLocal  = "session_expired_local"
	auditEventSessionExpiredRemote = "session_expired_remote"
	auditEventSessionEnded         = "session_ended"
	auditEventExitNotifyFailed     = "exit_notify_failed"
	auditEventStatusProbe          = "status_probe"
	auditEventCoreUnavailable      = "core_unavailable"
	auditEventStoreUnavailable     = "store_unavailable"
	auditEventUnclassified         = "unclassified_error"
)

// AuditErrorCode is the redacted error summary recorded on audit events.
// Raw Core payloads and transport errors are never logged.
type AuditErrorCode string

const (
	auditErrAuthRejected   AuditErrorCode = "auth_rejected"
	auditErrLocked         AuditErrorCode = "locked"
	auditErrExpired        AuditErrorCode = "session_expired"
	auditErrUnauth         AuditErrorCode = "not_authenticated"
	auditErrInputMissing   AuditErrorCode = "input_missing"
	auditErrCoreDown       AuditErrorCode = "core_unavailable"
	auditErrStoreDown      AuditErrorCode = "store_unavailable"
	auditErrNoConversation AuditErrorCode = "conversation_missing"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	ev Event,
	success bool,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:      time.Now().UTC(),
		EventType:      eventType,
		ConversationID: ev.ConversationID,
		SessionID:      sessionID,
		Intent:         ev.Intent.String(),
		Success:        success,
		Metadata:       metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrAuthRejected):
		return auditErrAuthRejected
	case errors.Is(err, ErrSessionLocked):
		return auditErrLocked
	case errors.Is(err, ErrSessionExpired):
		return auditErrExpired
	case errors.Is(err, ErrNotAuthenticated):
		return auditErrUnauth
	case errors.Is(err, ErrInputMissing):
		return auditErrInputMissing
	case errors.Is(err, core.ErrUnavailable):
		return auditErrCoreDown
	case errors.Is(err, session.ErrUnavailable):
		return auditErrStoreDown
	case errors.Is(err, ErrConversationMissing):
		return auditErrNoConversation
	default:
		return auditErrInternal
	}
}
