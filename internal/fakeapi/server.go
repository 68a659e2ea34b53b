// Package fakeapi is an in-memory stand-in for the FinTrack REST API. It
// backs local development of the CLI and the end-to-end tests.
package fakeapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/fintrack-client/internal/config"
	"github.com/jrsteele09/fintrack-client/token"
	"github.com/jrsteele09/fintrack-client/token/jwt"
	"github.com/jrsteele09/fintrack-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/fintrack-client/token/refresh/repofake"
	"github.com/jrsteele09/fintrack-client/users"
	userrepofake "github.com/jrsteele09/fintrack-client/users/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BasePath prefixes every API route
const BasePath = "/api/v1"

// GoogleAccount is the identity the fake provider sign-in resolves to
type GoogleAccount struct {
	ID    string
	Email string
	Name  string
}

var defaultGoogleAccount = GoogleAccount{
	ID:    "google-oauth2|100000000000000000001",
	Email: "google.user@example.com",
	Name:  "Google User",
}

type Server struct {
	engine   *gin.Engine
	handler  http.Handler
	users    users.Repo
	ledger   *ledger
	access   *jwt.Creator
	verifier *jwt.Inspector
	refresh  *refresh.Manager
	revoked  token.Denylist
	metrics  *serverMetrics
	registry *prometheus.Registry
	log      zerolog.Logger

	rotateRefresh bool
	google        GoogleAccount
	origins       []string
	now           func() time.Time
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.log = logger
	}
}

// WithRefreshRotation controls whether /auth/refresh issues a new refresh
// token. It is on by default.
func WithRefreshRotation(enabled bool) Option {
	return func(s *Server) {
		s.rotateRefresh = enabled
	}
}

func WithGoogleAccount(account GoogleAccount) Option {
	return func(s *Server) {
		s.google = account
	}
}

// WithNowFunc fixes the clock used for card expiry checks and timestamps
func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithAllowedOrigins lets browser clients on these origins call the API.
// "*" allows any origin. Without origins no CORS headers are sent.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = append(s.origins, origins...)
	}
}

// WithUserRepo replaces the in-memory account store
func WithUserRepo(repo users.Repo) Option {
	return func(s *Server) {
		s.users = repo
	}
}

func New(cfg config.FakeAPIConfig, options ...Option) *Server {
	revoked := token.NewMemoryDenylist(nil)
	s := &Server{
		users:         userrepofake.NewFakeUserRepo(),
		ledger:        newLedger(),
		access:        jwt.NewCreator(cfg),
		verifier:      jwt.NewInspector(cfg, revoked),
		refresh:       refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), cfg),
		revoked:       revoked,
		registry:      prometheus.NewRegistry(),
		log:           log.Logger,
		rotateRefresh: true,
		google:        defaultGoogleAccount,
		now:           time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	s.metrics = newServerMetrics(s.registry)

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger(), s.metrics.middleware(), securityHeaders())
	s.initRoutes()
	s.handler = withCORS(s.origins, s.engine)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// RevokeAccessToken invalidates an access token before it expires, so the
// next call carrying it gets a 401
func (s *Server) RevokeAccessToken(raw string) error {
	jti, exp, err := s.verifier.ParseAndExtractJTI(raw)
	if err != nil {
		return err
	}
	return s.revoked.Revoke(jti, exp)
}

// RevokeRefreshTokens signs the account with email out of every client
func (s *Server) RevokeRefreshTokens(email string) error {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	return s.refresh.DeleteForUser(user.ID)
}
