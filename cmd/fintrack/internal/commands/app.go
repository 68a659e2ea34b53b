package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/jrsteele09/fintrack-client/api"
	"github.com/jrsteele09/fintrack-client/auth"
	"github.com/jrsteele09/fintrack-client/credentials"
	"github.com/jrsteele09/fintrack-client/credentials/filerepo"
	credentialsrepofake "github.com/jrsteele09/fintrack-client/credentials/repofake"
	"github.com/jrsteele09/fintrack-client/credentials/valkeyrepo"
	"github.com/jrsteele09/fintrack-client/gateway"
	"github.com/jrsteele09/fintrack-client/internal/config"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/internal/logger"
	"github.com/jrsteele09/fintrack-client/sessions"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var errNotLoggedIn = errors.New("not logged in, run `fintrack login` first")

// app is the client stack one command runs against
type app struct {
	config   config.Config
	log      zerolog.Logger
	creds    *credentials.Store
	session  *sessions.Store
	api      *api.Client
	auth     *auth.Service
	metrics  *gateway.Metrics
	registry *prometheus.Registry
	out      io.Writer
	closers  []func()
}

func newApp(g *Globals) (*app, error) {
	cfgPath := g.ConfigFile
	if cfgPath == "" {
		cfgPath = config.DefaultFilePath()
	}
	opts := make([]config.Option, 0, 3)
	if g.APIURL != "" {
		opts = append(opts, config.WithAPIURL(g.APIURL))
	}
	if g.DataDir != "" {
		opts = append(opts, config.WithDataFolder(g.DataDir))
	}
	if g.Storage != "" {
		opts = append(opts, config.WithStorageBackend(g.Storage))
	}
	cfg, err := config.Load(cfgPath, opts...)
	if err != nil {
		return nil, err
	}

	log := logger.SetupWriter(g.stderr(), g.Debug)
	if !g.Debug {
		log = log.Level(zerolog.WarnLevel)
	}

	a := &app{
		config:   cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
		out:      g.stdout(),
	}

	repo, closeRepo, err := openRepo(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRepo)
	a.creds = credentials.NewStore(repo)
	a.session = sessions.New(a.creds, sessions.WithLogger(log))

	if a.metrics, err = gateway.NewMetrics(a.registry); err != nil {
		a.Close()
		return nil, err
	}

	navigator := gateway.NavigatorFunc(func(_ context.Context, reason error) {
		fmt.Fprintf(g.stderr(), "Session ended (%v). Run `fintrack login` to sign in again.\n", reason)
	})

	refresher := gateway.NewHTTPRefresher(cfg.GetAPIURL(),
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		gateway.WithMaxTries(cfg.GetRefreshMaxTries()),
	)

	middleware := []gateway.Middleware{
		gateway.RequestID(),
		gateway.Authorize(a.creds, refresher,
			gateway.WithSession(a.session),
			gateway.WithNavigator(navigator),
			gateway.WithMetrics(a.metrics),
			gateway.WithLogger(log),
			gateway.WithCoalescing(cfg.GetCoalesceRefresh()),
		),
		gateway.Logging(log),
	}
	if cfg.GetHTTPCacheEnabled() {
		middleware = append(middleware, gateway.Caching(filepath.Join(cfg.GetDataFolder(), "cache")))
	}

	httpClient := &http.Client{
		Transport: gateway.Chain(http.DefaultTransport, middleware...),
		Timeout:   cfg.GetHTTPTimeout(),
	}
	a.api = api.New(cfg.GetAPIURL(), httpClient, api.WithLogger(log))
	a.auth = auth.NewService(a.api, a.creds, a.session,
		auth.WithNavigator(navigator),
		auth.WithLogger(log),
	)
	return a, nil
}

func openRepo(cfg config.Config) (credentials.Repo, func(), error) {
	switch cfg.GetStorageBackend() {
	case config.StorageMemory:
		return credentialsrepofake.NewFakeCredentialsRepo(), func() {}, nil
	case config.StorageValkey:
		repo, err := valkeyrepo.Dial(cfg.GetValkeyAddr(), cfg.GetValkeyPrefix())
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		repo, err := filerepo.New(cfg.GetDataFolder())
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// requireUser restores the stored session and fails when nobody is signed in
func (a *app) requireUser(ctx context.Context) (*users.User, error) {
	err := a.session.Bootstrap(ctx, a.api)
	if user := a.session.State().User; user != nil {
		return user, nil
	}
	if errors.Is(err, errors.ErrSessionExpired) {
		return nil, err
	}
	if err != nil {
		a.log.Debug().Err(err).Msg("session restore failed")
	}
	return nil, errNotLoggedIn
}

// run builds the app, hands it to fn and tears it down again
func run(g *Globals, fn func(a *app) error) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
