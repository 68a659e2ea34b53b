package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/fintrack-client/api"
	"github.com/jrsteele09/fintrack-client/credentials"
	"github.com/jrsteele09/fintrack-client/gateway"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/sessions"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Query parameters the provider redirect carries back to the client
const (
	ParamAccessToken  = "access_token"
	ParamRefreshToken = "refresh_token"
	ParamError        = "error"
)

// API is the part of the remote API the sign-in flows use
type API interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context) (*users.User, error)
	GoogleLoginURL(redirect string) string
}

var _ API = (*api.Client)(nil)

// Credentials is the durable storage the sign-in flows write to
type Credentials interface {
	SavePair(ctx context.Context, p credentials.Pair) error
	CacheUser(ctx context.Context, u *users.User) error
	RefreshToken(ctx context.Context) (string, error)
}

var _ Credentials = (*credentials.Store)(nil)

// Session is the in-memory session the sign-in flows update
type Session interface {
	SetUser(user *users.User)
	Logout(ctx context.Context) error
}

var _ Session = (*sessions.Store)(nil)

// Service runs login, registration, logout and the provider callback. Every
// flow that obtains credentials persists them before touching the session.
type Service struct {
	api       API
	creds     Credentials
	session   Session
	navigator gateway.Navigator
	log       zerolog.Logger
}

type ServiceOption func(*Service)

func WithNavigator(navigator gateway.Navigator) ServiceOption {
	return func(s *Service) {
		s.navigator = navigator
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = logger
	}
}

func NewService(client API, creds Credentials, session Session, options ...ServiceOption) *Service {
	s := &Service{
		api:     client,
		creds:   creds,
		session: session,
		log:     log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Login validates the form locally, then signs in. Bad credentials return an
// error matching ErrInvalidCredentials and leave storage untouched.
func (s *Service) Login(ctx context.Context, form LoginForm) (*users.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, form.request())
	if err != nil {
		if api.StatusCode(err) == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
		}
		return nil, errors.Wrapf(err, "login")
	}
	return s.establish(ctx, resp)
}

func (s *Service) Register(ctx context.Context, form RegisterForm) (*users.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.api.Register(ctx, form.request())
	if err != nil {
		return nil, errors.Wrapf(err, "register")
	}
	return s.establish(ctx, resp)
}

func (s *Service) establish(ctx context.Context, resp *api.AuthResponse) (*users.User, error) {
	if err := s.creds.SavePair(ctx, resp.Pair()); err != nil {
		return nil, err
	}
	user := resp.User
	if err := s.creds.CacheUser(ctx, &user); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache user")
	}
	s.session.SetUser(&user)
	s.log.Info().Str("user_id", user.ID).Msg("signed in")
	return &user, nil
}

// Logout revokes the refresh token on a best-effort basis, then clears the
// local session whatever the server said.
func (s *Service) Logout(ctx context.Context) error {
	refreshToken, err := s.creds.RefreshToken(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not read refresh token for logout")
	}
	if refreshToken != "" {
		if err := s.api.Logout(ctx, refreshToken); err != nil {
			s.log.Warn().Err(err).Msg("server logout failed, continuing locally")
		}
	}
	return s.session.Logout(ctx)
}

// LoginURL is the provider sign-in entry point. redirect is where the API
// should send the tokens back to.
func (s *Service) LoginURL(redirect string) string {
	return s.api.GoogleLoginURL(redirect)
}

// CompleteOAuthCallback finishes a provider sign-in from the redirect query.
// Missing tokens navigate to login without writing anything. A profile fetch
// failure after the tokens were stored logs out again.
func (s *Service) CompleteOAuthCallback(ctx context.Context, query url.Values) (*users.User, error) {
	pair := credentials.Pair{
		AccessToken:  query.Get(ParamAccessToken),
		RefreshToken: query.Get(ParamRefreshToken),
	}

	if providerErr := query.Get(ParamError); providerErr != "" {
		return nil, s.rejectCallback(ctx, errors.Wrapf(errors.ErrInvalidCallback, "provider returned %q", providerErr))
	}
	if !pair.Present() {
		return nil, s.rejectCallback(ctx, errors.Wrapf(errors.ErrInvalidCallback, "missing %s or %s", ParamAccessToken, ParamRefreshToken))
	}

	if err := s.creds.SavePair(ctx, pair); err != nil {
		return nil, s.rejectCallback(ctx, err)
	}

	user, err := s.api.Profile(ctx)
	if err == nil && user == nil {
		err = errors.ErrUserNotFound
	}
	if err != nil {
		_ = s.session.Logout(ctx)
		err = errors.Wrapf(err, "oauth callback: fetch profile")
		// The gateway has already navigated
		if errors.Is(err, errors.ErrSessionExpired) {
			return nil, err
		}
		return nil, s.rejectCallback(ctx, err)
	}

	if err := s.creds.CacheUser(ctx, user); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache user")
	}
	s.session.SetUser(user)
	s.log.Info().Str("user_id", user.ID).Msg("signed in with provider")
	return user, nil
}

func (s *Service) rejectCallback(ctx context.Context, err error) error {
	s.log.Warn().Err(err).Msg("oauth callback rejected")
	if s.navigator != nil {
		s.navigator.ToLogin(ctx, err)
	}
	return err
}
