package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/fintrack-client/credentials"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Credentials is the slice of credential storage the gateway reads and writes
type Credentials interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SaveRefreshed(ctx context.Context, p credentials.Pair) error
	Clear(ctx context.Context) error
}

var _ Credentials = (*credentials.Store)(nil)

// SessionTerminator resets the in-memory session on an unrecoverable 401
type SessionTerminator interface {
	Logout(ctx context.Context) error
}

// Transport attaches the stored access token to every request and recovers
// from an expired token with exactly one refresh-and-retry per call.
type Transport struct {
	base        http.RoundTripper
	creds       Credentials
	refresher   Refresher
	session     SessionTerminator
	navigator   Navigator
	metrics     *Metrics
	log         zerolog.Logger
	refreshPath string
	coalesce    bool
	group       singleflight.Group
}

var _ http.RoundTripper = (*Transport)(nil)

type Option func(*Transport)

func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) {
		t.base = base
	}
}

func WithSession(session SessionTerminator) Option {
	return func(t *Transport) {
		t.session = session
	}
}

func WithNavigator(navigator Navigator) Option {
	return func(t *Transport) {
		t.navigator = navigator
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(t *Transport) {
		t.metrics = metrics
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.log = logger
	}
}

// WithCoalescing shares one in-flight refresh between concurrent calls that
// hold the same refresh token. On by default.
func WithCoalescing(enabled bool) Option {
	return func(t *Transport) {
		t.coalesce = enabled
	}
}

func New(creds Credentials, refresher Refresher, options ...Option) *Transport {
	t := &Transport{
		base:        http.DefaultTransport,
		creds:       creds,
		refresher:   refresher,
		log:         log.Logger,
		refreshPath: RefreshPath,
		coalesce:    true,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Authorize returns the gateway as a Middleware for use with Chain
func Authorize(creds Credentials, refresher Refresher, options ...Option) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return New(creds, refresher, append(options, WithBase(next))...)
	}
}

// fatalError marks a failure that ends the session
type fatalError struct {
	cause error
}

func (e *fatalError) Error() string { return e.cause.Error() }

func (e *fatalError) Unwrap() error { return e.cause }

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.isRefreshCall(req) {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	token, err := t.creds.AccessToken(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "gateway: read access token")
	}

	prev, _ := AttemptFromContext(ctx)
	attempt := Attempt{Number: prev.Number + 1, Token: token}

	resp, err := t.dispatch(req, attempt, getBody)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if attempt.Retried() || isAnonymous(ctx) {
		return resp, nil
	}
	drainAndClose(resp)

	newToken, err := t.recover(ctx, attempt.Token)
	if err != nil {
		var fatal *fatalError
		if errors.As(err, &fatal) {
			return nil, t.terminate(ctx, fatal.cause)
		}
		return nil, err
	}

	return t.dispatch(req, Attempt{Number: attempt.Number + 1, Token: newToken}, getBody)
}

func (t *Transport) dispatch(req *http.Request, attempt Attempt, getBody func() (io.ReadCloser, error)) (*http.Response, error) {
	r := req.Clone(withAttempt(req.Context(), attempt))
	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, errors.Wrapf(err, "gateway: replay request body")
		}
		r.Body = body
		r.GetBody = getBody
	}

	r.Header.Del("Authorization")
	if attempt.Token != "" {
		(&oauth2.Token{AccessToken: attempt.Token, TokenType: "Bearer"}).SetAuthHeader(r)
	}

	resp, err := t.base.RoundTrip(r)
	t.metrics.observeResponse(resp, err)
	return resp, err
}

// recover returns the token to retry with. Errors wrapped in fatalError end the session.
func (t *Transport) recover(ctx context.Context, usedToken string) (string, error) {
	stored, err := t.creds.AccessToken(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "gateway: read access token")
	}
	// Another call already rotated the pair while this one was in flight
	if stored != "" && stored != usedToken {
		t.metrics.observeRefresh(OutcomeReused)
		return stored, nil
	}

	refreshToken, err := t.creds.RefreshToken(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "gateway: read refresh token")
	}
	if refreshToken == "" {
		t.metrics.observeRefresh(OutcomeMissingToken)
		return "", &fatalError{cause: errors.ErrNoRefreshToken}
	}

	res, err := t.refresh(ctx, refreshToken)
	if err != nil {
		if ctx.Err() != nil {
			t.metrics.observeRefresh(OutcomeError)
			return "", ctx.Err()
		}
		switch {
		case errors.Is(err, errors.ErrRefreshRejected):
			t.metrics.observeRefresh(OutcomeRejected)
		case errors.Is(err, errors.ErrNoRefreshToken):
			t.metrics.observeRefresh(OutcomeMissingToken)
		default:
			t.metrics.observeRefresh(OutcomeError)
		}
		return "", &fatalError{cause: err}
	}

	if res.reused {
		t.metrics.observeRefresh(OutcomeReused)
	} else {
		t.metrics.observeRefresh(OutcomeSuccess)
	}
	return res.pair.AccessToken, nil
}

type refreshResult struct {
	pair   credentials.Pair
	reused bool
}

// refresh calls the refresher and persists the result before returning, so a
// retry never runs ahead of the token write. A refresh token that was rotated
// after the caller read it is not spent again; the stored pair is reused.
func (t *Transport) refresh(ctx context.Context, refreshToken string) (refreshResult, error) {
	do := func(ctx context.Context) (refreshResult, error) {
		current, err := t.creds.RefreshToken(ctx)
		if err != nil {
			return refreshResult{}, errors.Wrapf(err, "gateway: read refresh token")
		}
		if current == "" {
			return refreshResult{}, errors.ErrNoRefreshToken
		}
		if current != refreshToken {
			access, err := t.creds.AccessToken(ctx)
			if err != nil {
				return refreshResult{}, errors.Wrapf(err, "gateway: read access token")
			}
			if access != "" {
				t.log.Debug().Msg("refresh token rotated by another call, reusing stored pair")
				return refreshResult{pair: credentials.Pair{AccessToken: access, RefreshToken: current}, reused: true}, nil
			}
		}

		pair, err := t.refresher.Refresh(ctx, current)
		if err != nil {
			return refreshResult{}, err
		}
		if err := t.creds.SaveRefreshed(ctx, pair); err != nil {
			return refreshResult{}, errors.Wrapf(err, "gateway: persist refreshed credentials")
		}
		t.log.Debug().Bool("rotated", pair.RefreshToken != "").Msg("access token refreshed")
		return refreshResult{pair: pair}, nil
	}

	if !t.coalesce {
		return do(ctx)
	}

	// The shared refresh must not die with whichever caller started it
	shared := context.WithoutCancel(ctx)
	ch := t.group.DoChan(refreshToken, func() (interface{}, error) {
		return do(shared)
	})
	select {
	case <-ctx.Done():
		return refreshResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return refreshResult{}, res.Err
		}
		return res.Val.(refreshResult), nil
	}
}

// terminate clears credentials and the session, then sends the user to login.
func (t *Transport) terminate(ctx context.Context, cause error) error {
	t.metrics.observeSessionExpired()
	t.log.Warn().Err(cause).Msg("session expired, logging out")

	cleanup := context.WithoutCancel(ctx)
	if err := t.creds.Clear(cleanup); err != nil {
		t.log.Error().Err(err).Msg("failed to clear credentials")
	}
	if t.session != nil {
		_ = t.session.Logout(cleanup)
	}

	err := fmt.Errorf("%w: %w", errors.ErrSessionExpired, cause)
	if t.navigator != nil {
		t.navigator.ToLogin(cleanup, err)
	}
	return err
}

func (t *Transport) isRefreshCall(req *http.Request) bool {
	return req.Method == http.MethodPost && strings.HasSuffix(req.URL.Path, t.refreshPath)
}

// replayableBody returns a body factory so the retry can resend the payload.
// Bodies without GetBody are buffered before the first dispatch.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		req.Body.Close()
		return req.GetBody, nil
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "gateway: buffer request body")
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
