package authjwt

import (
	"context"
)

const (
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventLoginRateLimited      = "login_rate_limited"
	auditEventProviderLoginSuccess  = "provider_login_success"
	auditEventProviderLoginFailure  = "provider_login_failure"
	auditEventReissueSuccess        = "reissue_success"
	auditEventReissueFailure        = "reissue_failure"
	auditEventReissueReplayRejected = "reissue_replay_rejected"
	auditEventReissueRateLimited    = "reissue_rate_limited"
	auditEventLogout                = "logout"
	auditEventGateBlacklisted       = "gate_blacklisted"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subject string,
	tokenID string,
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
		Timestamp: e.now().UTC(),
		EventType: eventType,
		Subject:   subject,
		TokenID:   tokenID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.ErrorKind = string(KindOf(err))
	}

	e.audit.Emit(ctx, event)
}
