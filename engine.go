package authjwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	internalaudit "github.com/MrEthical07/authjwt/internal/audit"
	"github.com/MrEthical07/authjwt/internal/flows"
	"github.com/MrEthical07/authjwt/internal/rate"
	"github.com/MrEthical07/authjwt/jwt"
	"github.com/MrEthical07/authjwt/session"
	"github.com/MrEthical07/authjwt/store"
)

const (
	loginSucceededMessage       = "login succeeded"
	socialLoginSucceededMessage = "social login succeeded"
)

// Engine runs the token lifecycle: login, reissue, logout and request
// authentication.
//
// Engine instances are created by [Builder.Build] and are safe for concurrent use.
type Engine struct {
	config        Config
	codec         *jwt.Manager
	store         store.Store
	registry      *session.Registry
	flows         flows.Service
	authenticator Authenticator
	userLookup    UserLookup
	logger        *zap.Logger
	audit         *internalaudit.Dispatcher
	metrics       *Metrics
	now           func() time.Time
}

// Close flushes and stops the audit dispatcher. It does not close the Redis client.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped because the queue was full
// or the emitting request ended first.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditDroppedByType breaks [Engine.AuditDropped] down by event type.
func (e *Engine) AuditDroppedByType() map[string]uint64 {
	if e == nil {
		return map[string]uint64{}
	}
	return e.audit.DroppedByType()
}

// MetricsSnapshot returns a copy of all counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Metrics exposes the live metrics for exporters.
func (e *Engine) Metrics() *Metrics {
	if e == nil {
		return nil
	}
	return e.metrics
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Codec returns the token codec used to sign and verify tokens.
func (e *Engine) Codec() *jwt.Manager {
	return e.codec
}

// Registry returns the session registry holding refresh records and the blacklist.
func (e *Engine) Registry() *session.Registry {
	return e.registry
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// Ping checks store reachability when the store supports it.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if e == nil || e.store == nil {
		return 0, ErrEngineNotReady
	}
	pinger, ok := e.store.(interface {
		Ping(context.Context) (time.Duration, error)
	})
	if !ok {
		return 0, nil
	}
	return pinger.Ping(ctx)
}

func (e *Engine) ready() bool {
	return e != nil && e.flows.Initialized()
}

// Login verifies credentials and issues an access/refresh pair sharing one token id.
//
// Failures classify with [KindOf] as BadCredentials, UserDisabled, UserDeleted,
// RateLimited, a store kind, or InternalError.
func (e *Engine) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res := e.flows.Login(ctx, creds.Username, creds.Password)
	if res.LimiterErr != nil && KindOf(res.LimiterErr).Infrastructure() {
		e.metricInc(MetricStoreFailure)
	}
	if res.Failure != flows.LoginFailureNone {
		err := e.loginError(res)
		if res.Failure == flows.LoginFailureRateLimited && errors.Is(err, ErrRateLimited) {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", "", err, func() map[string]string {
				return map[string]string{"username": creds.Username}
			})
			return nil, err
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, res.Subject, res.TokenID, err, func() map[string]string {
			return map[string]string{"username": creds.Username}
		})
		if KindOf(err).Infrastructure() {
			e.metricInc(MetricStoreFailure)
			e.logger.Warn("login failed on store", zap.String("subject", res.Subject), zap.Error(err))
		}
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, res.Subject, res.TokenID, nil, nil)

	return &LoginResult{
		Subject:      res.Subject,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Role:         res.Role,
		Message:      loginSucceededMessage,
		Success:      true,
	}, nil
}

// LoginWithProvider issues a pair for a principal already authenticated by an external
// OAuth provider. No credentials are checked here.
func (e *Engine) LoginWithProvider(ctx context.Context, principal Principal, provider, providerID string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	provider = strings.TrimSpace(provider)
	if principal.Subject == "" || provider == "" {
		return nil, fmt.Errorf("%w: provider login requires a subject and a provider", ErrBadCredentials)
	}

	res := e.flows.IssuePair(ctx, principal.Subject, principal.Role)
	if res.Failure != flows.LoginFailureNone {
		err := e.loginError(res)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventProviderLoginFailure, false, principal.Subject, res.TokenID, err, func() map[string]string {
			return map[string]string{"provider": provider}
		})
		if KindOf(err).Infrastructure() {
			e.metricInc(MetricStoreFailure)
			e.logger.Warn("provider login failed on store", zap.String("subject", principal.Subject), zap.Error(err))
		}
		return nil, err
	}

	e.metricInc(MetricProviderLogin)
	e.emitAudit(ctx, auditEventProviderLoginSuccess, true, res.Subject, res.TokenID, nil, func() map[string]string {
		return map[string]string{"provider": provider}
	})

	return &LoginResult{
		Subject:      res.Subject,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Role:         res.Role,
		Message:      socialLoginSucceededMessage,
		Success:      true,
		Provider:     provider,
		ProviderID:   providerID,
	}, nil
}

func (e *Engine) loginError(res flows.LoginResult) error {
	switch res.Failure {
	case flows.LoginFailureRateLimited:
		if errors.Is(res.Err, rate.ErrRateLimited) {
			return fmt.Errorf("%w: %w", ErrRateLimited, res.Err)
		}
		return fmt.Errorf("login throttle: %w", res.Err)
	case flows.LoginFailureAuthenticate:
		if isAccountError(res.Err) {
			return res.Err
		}
		return fmt.Errorf("authenticate: %w", res.Err)
	case flows.LoginFailureTokenID:
		return fmt.Errorf("generate token id: %w", res.Err)
	case flows.LoginFailureIssue:
		return fmt.Errorf("issue token pair: %w", res.Err)
	case flows.LoginFailurePersist:
		return fmt.Errorf("persist refresh record: %w", res.Err)
	default:
		return res.Err
	}
}

// Reissue redeems a refresh token for a new pair and retires the old record. A
// refresh token is accepted at most once; concurrent redemptions of the same token
// yield exactly one success.
func (e *Engine) Reissue(ctx context.Context, refreshToken string) (*ReissueResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res := e.flows.Reissue(ctx, refreshToken)
	if res.Failure != flows.ReissueFailureNone {
		err := reissueError(res)
		switch {
		case res.Failure == flows.ReissueFailureNotInStore:
			e.metricInc(MetricReissueReplayRejected)
			e.emitAudit(ctx, auditEventReissueReplayRejected, false, res.Subject, res.PreviousTokenID, err, nil)
		case errors.Is(err, ErrRateLimited):
			e.metricInc(MetricReissueRateLimited)
			e.emitAudit(ctx, auditEventReissueRateLimited, false, res.Subject, res.PreviousTokenID, err, nil)
		default:
			e.metricInc(MetricReissueFailure)
			e.emitAudit(ctx, auditEventReissueFailure, false, res.Subject, res.PreviousTokenID, err, nil)
		}
		if KindOf(err).Infrastructure() {
			e.metricInc(MetricStoreFailure)
			e.logger.Warn("reissue failed on store", zap.String("subject", res.Subject), zap.Error(err))
		}
		return nil, err
	}

	e.metricInc(MetricReissueSuccess)
	e.emitAudit(ctx, auditEventReissueSuccess, true, res.Subject, res.TokenID, nil, func() map[string]string {
		return map[string]string{"previous_token_id": res.PreviousTokenID}
	})

	return &ReissueResult{
		Subject:      res.Subject,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Role:         res.Role,
	}, nil
}

func reissueError(res flows.ReissueResult) error {
	switch res.Failure {
	case flows.ReissueFailureMissing:
		return ErrRefreshTokenNotFound
	case flows.ReissueFailureExpired:
		return wrapCause(ErrExpiredRefreshToken, res.Err)
	case flows.ReissueFailureInvalidCategory:
		return wrapCause(ErrInvalidRefreshTokenCategory, res.Err)
	case flows.ReissueFailureRateLimited:
		if errors.Is(res.Err, rate.ErrRateLimited) {
			return fmt.Errorf("%w: %w", ErrRateLimited, res.Err)
		}
		return fmt.Errorf("reissue throttle: %w", res.Err)
	case flows.ReissueFailureNotInStore:
		return wrapCause(ErrRefreshTokenNotFoundInStore, res.Err)
	case flows.ReissueFailureStore:
		return fmt.Errorf("reissue: %w", res.Err)
	case flows.ReissueFailureTokenID:
		return fmt.Errorf("generate token id: %w", res.Err)
	case flows.ReissueFailureIssue:
		return fmt.Errorf("issue token pair: %w", res.Err)
	default:
		return res.Err
	}
}

// Logout blacklists accessToken for its remaining lifetime and deletes the refresh
// record named by refreshToken. Either token may be empty or unparsable; that step
// is skipped. Store failures from both steps are joined.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	res := e.flows.Logout(ctx, accessToken, refreshToken)
	if res.Revoked {
		e.metricInc(MetricAccessTokenRevoked)
	}
	if res.Err != nil {
		err := fmt.Errorf("logout: %w", res.Err)
		e.metricInc(MetricStoreFailure)
		e.logger.Warn("logout partially failed",
			zap.String("subject", res.Subject),
			zap.Bool("access_revoked", res.Revoked),
			zap.Bool("refresh_deleted", res.RecordDeleted),
			zap.Error(res.Err),
		)
		e.emitAudit(ctx, auditEventLogout, false, res.Subject, "", err, nil)
		return err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, res.Subject, "", nil, func() map[string]string {
		return map[string]string{
			"access_revoked":  boolString(res.Revoked),
			"refresh_deleted": boolString(res.RecordDeleted),
		}
	})
	return nil
}

// BearerToken extracts the credential from an Authorization header value. The
// scheme is matched case-insensitively; ok is false for any other scheme.
func BearerToken(authorization string) (token string, ok bool) {
	return flows.BearerToken(authorization)
}

// Authenticate evaluates an Authorization header value. A missing or non-Bearer
// header passes through anonymously; a Bearer credential either authenticates or
// rejects. A store failure during the blacklist check rejects.
func (e *Engine) Authenticate(ctx context.Context, authorization string) GateResult {
	if !e.ready() {
		return GateResult{Decision: GateReject, Err: ErrEngineNotReady}
	}

	var start time.Time
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start = time.Now()
	}

	res := e.flows.Gate(ctx, authorization)

	if !start.IsZero() {
		e.metrics.Observe(MetricGateLatency, time.Since(start))
	}

	switch res.Decision {
	case flows.GatePassThrough:
		e.metricInc(MetricGatePassThrough)
		return GateResult{Decision: GatePassThrough}
	case flows.GateContinue:
		e.metricInc(MetricGateAuthenticated)
		return GateResult{
			Decision:  GateContinue,
			Principal: Principal{Subject: res.Subject, Role: res.Role},
		}
	}

	err := gateError(res)
	e.metricInc(MetricGateRejected)
	switch res.Failure {
	case flows.GateFailureBlacklisted:
		e.metricInc(MetricGateBlacklisted)
		e.emitAudit(ctx, auditEventGateBlacklisted, false, res.Subject, res.TokenID, err, nil)
	case flows.GateFailureStore, flows.GateFailureLookup:
		if KindOf(err).Infrastructure() {
			e.metricInc(MetricStoreFailure)
		}
		e.logger.Warn("gate rejected on degraded dependency", zap.String("subject", res.Subject), zap.Error(err))
	default:
		e.logger.Debug("gate rejected", zap.String("kind", string(KindOf(err))), zap.Error(err))
	}

	return GateResult{Decision: GateReject, Err: err}
}

func gateError(res flows.GateResult) error {
	switch res.Failure {
	case flows.GateFailureExpired:
		return wrapCause(ErrExpiredAccessToken, res.Err)
	case flows.GateFailureInvalid:
		return wrapCause(ErrInvalidAccessToken, res.Err)
	case flows.GateFailureBlacklisted:
		return ErrTokenBlacklisted
	case flows.GateFailureStore:
		return fmt.Errorf("blacklist check: %w", res.Err)
	case flows.GateFailureUserNotFound:
		if errors.Is(res.Err, ErrUserNotFound) {
			return res.Err
		}
		return wrapCause(ErrUserNotFound, res.Err)
	case flows.GateFailureLookup:
		return fmt.Errorf("user lookup: %w", res.Err)
	default:
		if res.Err != nil {
			return res.Err
		}
		return ErrInvalidAccessToken
	}
}

func (e *Engine) authenticate(ctx context.Context, username, password string) (string, string, error) {
	p, err := e.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		return "", "", err
	}
	if p.Subject == "" {
		return "", "", errors.New("authenticator returned an empty subject")
	}
	return p.Subject, p.Role, nil
}

func (e *Engine) findUserRole(ctx context.Context, subject string) (string, error) {
	p, err := e.userLookup.FindBySubject(ctx, subject)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

func isAccountError(err error) bool {
	return errors.Is(err, ErrBadCredentials) ||
		errors.Is(err, ErrUserDisabled) ||
		errors.Is(err, ErrUserDeleted)
}

// Only credential and account-state rejections spend the login budget.
func countsAsFailedLogin(err error) bool {
	return isAccountError(err)
}

func newTokenID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func wrapCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
