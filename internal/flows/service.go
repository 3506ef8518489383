package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Gate.Codec != nil && s.deps.Login.Authenticate != nil
}

func (s Service) Login(ctx context.Context, username, password string) LoginResult {
	return RunLogin(ctx, username, password, s.deps.Login)
}

func (s Service) IssuePair(ctx context.Context, subject, role string) LoginResult {
	return RunIssuePair(ctx, subject, role, s.deps.Login)
}

func (s Service) Reissue(ctx context.Context, refreshToken string) ReissueResult {
	return RunReissue(ctx, refreshToken, s.deps.Reissue)
}

func (s Service) Logout(ctx context.Context, accessToken, refreshToken string) LogoutResult {
	return RunLogout(ctx, accessToken, refreshToken, s.deps.Logout)
}

func (s Service) Gate(ctx context.Context, authorization string) GateResult {
	return RunGate(ctx, authorization, s.deps.Gate)
}
