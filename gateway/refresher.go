package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jrsteele09/fintrack-client/credentials"
	"github.com/jrsteele09/fintrack-client/internal/errors"
)

// RefreshPath is the refresh endpoint relative to the API base URL
const RefreshPath = "/auth/refresh"

// Refresher exchanges a refresh token for a new credential pair. The returned
// RefreshToken is empty when the server did not rotate it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (credentials.Pair, error)
}

type RefresherFunc func(ctx context.Context, refreshToken string) (credentials.Pair, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (credentials.Pair, error) {
	return f(ctx, refreshToken)
}

// RefreshError is returned for a non-2xx refresh response
type RefreshError struct {
	StatusCode int
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh rejected with status %d", e.StatusCode)
}

func (e *RefreshError) Unwrap() error {
	return errors.ErrRefreshRejected
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// HTTPRefresher calls POST {base}/auth/refresh directly, never through the gateway.
type HTTPRefresher struct {
	url        string
	client     *http.Client
	maxTries   uint
	newBackOff func() backoff.BackOff
}

type RefresherOption func(*HTTPRefresher)

func WithHTTPClient(client *http.Client) RefresherOption {
	return func(r *HTTPRefresher) {
		r.client = client
	}
}

// WithMaxTries bounds attempts on transport errors. Rejections are never retried.
func WithMaxTries(n uint) RefresherOption {
	return func(r *HTTPRefresher) {
		if n > 0 {
			r.maxTries = n
		}
	}
}

func WithBackOff(newBackOff func() backoff.BackOff) RefresherOption {
	return func(r *HTTPRefresher) {
		r.newBackOff = newBackOff
	}
}

func NewHTTPRefresher(baseURL string, options ...RefresherOption) *HTTPRefresher {
	r := &HTTPRefresher{
		url:      strings.TrimRight(baseURL, "/") + RefreshPath,
		client:   &http.Client{Timeout: 30 * time.Second},
		maxTries: 3,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			return b
		},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (credentials.Pair, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return credentials.Pair{}, err
	}

	operation := func() (credentials.Pair, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
		if err != nil {
			return credentials.Pair{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return credentials.Pair{}, backoff.Permanent(ctx.Err())
			}
			return credentials.Pair{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return credentials.Pair{}, backoff.Permanent(&RefreshError{StatusCode: resp.StatusCode})
		}

		var pair credentials.Pair
		if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
			return credentials.Pair{}, backoff.Permanent(errors.Wrapf(errors.ErrRefreshRejected, "decode refresh response: %v", err))
		}
		if pair.AccessToken == "" {
			return credentials.Pair{}, backoff.Permanent(errors.Wrapf(errors.ErrRefreshRejected, "refresh response without accessToken"))
		}
		return pair, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(r.maxTries),
	)
}
