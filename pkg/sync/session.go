package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"

	"github.com/habitgrid/habitgrid/pkg/store"
)

// State is the connection lifecycle phase of a Session.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Refresh timing: fire five minutes before expiry, but never sooner than
// sixty seconds from now when the remaining lifetime is short.
const (
	refreshEarly   = 5 * time.Minute
	refreshMinLead = time.Minute
)

// Session owns one authenticated connection to the remote grid service.
// It replaces the ambient singletons of a browser app with an explicit
// object: create, Connect, use, SignOut. Exactly one scheduled token
// refresh may be pending at a time; arming a new one cancels the previous.
//
// Push, Pull and SmartMerge provide no internal mutual exclusion between
// each other; at-most-one-in-flight sync per session is the caller's
// responsibility.
type Session struct {
	gw   *store.Gateway
	auth Authenticator

	mu      stdsync.Mutex
	state   State
	client  GridClient
	token   *oauth2.Token
	refresh *time.Timer
}

// Option customizes a Session at construction.
type Option func(*Session)

// WithGridClient swaps the HTTP grid client for another implementation,
// typically a test double.
func WithGridClient(c GridClient) Option {
	return func(s *Session) { s.client = c }
}

func New(gw *store.Gateway, auth Authenticator, opts ...Option) *Session {
	s := &Session{
		gw:    gw,
		auth:  auth,
		state: StateDisconnected,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a bearer token is currently held.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil && s.token.AccessToken != ""
}

// Token implements oauth2.TokenSource over the session's current token so
// the HTTP grid client can authorize requests.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil || s.token.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}
	return s.token, nil
}

// Connect establishes the client session. If a cached token with a future
// expiry exists it is restored silently and the refresh timer armed; no
// consent prompt is shown. Otherwise the session connects unauthenticated
// and an explicit RequestToken is required before syncing.
func (s *Session) Connect(ctx context.Context, apiKey, clientID string) error {
	if apiKey == "" || clientID == "" {
		return errors.New("api key and client id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateConnecting

	if s.client == nil {
		s.client = NewHTTPGridClient(DefaultBaseURL, apiKey, s)
	}

	bearer, expiry, err := s.gw.Token(ctx)
	if err != nil {
		s.state = StateDisconnected
		return errors.Errorf("loading cached token: %w", err)
	}
	if bearer != "" && time.Now().Before(expiry) {
		s.token = &oauth2.Token{AccessToken: bearer, Expiry: expiry}
		s.armRefreshLocked(ctx, time.Until(expiry))
		zerolog.Ctx(ctx).Debug().Time("expiry", expiry).Msg("restored cached session token")
	}

	s.state = StateConnected
	return nil
}

// RequestToken obtains a bearer token. An interactive consent flow is
// triggered only when no token is currently held; otherwise the refresh is
// silent. The token is persisted with its absolute expiry and the refresh
// timer is re-armed. Failures are reported upward without retry.
func (s *Session) RequestToken(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	current := s.token
	s.mu.Unlock()

	tok, err := s.auth.Authorize(ctx, current)
	if err != nil {
		return errors.Errorf("authorizing: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	if err := s.gw.SetToken(ctx, tok.AccessToken, tok.Expiry); err != nil {
		return errors.Errorf("persisting token: %w", err)
	}
	s.armRefreshLocked(ctx, time.Until(tok.Expiry))
	return nil
}

// SignOut revokes the current token (best-effort), drops the cached copy
// and disarms the refresh timer.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.token.AccessToken != "" {
		if err := s.auth.Revoke(ctx, s.token.AccessToken); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("revoking token failed")
		}
	}
	s.token = nil
	s.disarmRefreshLocked()
	s.state = StateDisconnected

	if err := s.gw.ClearToken(ctx); err != nil {
		return errors.Errorf("clearing cached token: %w", err)
	}
	return nil
}

// RefreshLead is the delay before expiry at which the refresh fires.
func RefreshLead(expiresIn time.Duration) time.Duration {
	lead := expiresIn - refreshEarly
	if lead < refreshMinLead {
		lead = refreshMinLead
	}
	return lead
}

func (s *Session) armRefreshLocked(ctx context.Context, expiresIn time.Duration) {
	s.disarmRefreshLocked()

	logger := zerolog.Ctx(ctx).With().Logger()
	s.refresh = time.AfterFunc(RefreshLead(expiresIn), func() {
		rctx := logger.WithContext(context.Background())
		if err := s.RequestToken(rctx); err != nil {
			logger.Error().Err(err).Msg("scheduled token refresh failed")
		}
	})
}

func (s *Session) disarmRefreshLocked() {
	if s.refresh != nil {
		s.refresh.Stop()
		s.refresh = nil
	}
}

func (s *Session) ready() (GridClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected || s.client == nil {
		return nil, ErrNotConnected
	}
	if s.token == nil || s.token.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}
	return s.client, nil
}
