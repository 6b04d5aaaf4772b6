package synbridge

import "context"

// status probes Core reachability. It works with or without an
// authenticated session, so a user can check the backend before spending
// a code on it.
func (e *Engine) status(ctx context.Context, ev Event) Speech {
	probe, err := e.core.Status(ctx)
	if err != nil {
		e.metricInc(MetricCoreUnavailable)
		e.emitAudit(ctx, auditEventStatusProbe, ev, false, "", err, nil)
		return e.bridgeSpeech(ev, e.config.Messages.StatusOffline, "")
	}

	e.emitAudit(ctx, auditEventStatusProbe, ev, probe.IsOnline(), "", nil, func() map[string]string {
		return map[string]string{"status": probe.Status}
	})
	if probe.IsOnline() {
		return e.bridgeSpeech(ev, e.config.Messages.StatusOnline, "")
	}
	return e.bridgeSpeech(ev, e.config.Messages.StatusOffline, "")
}
