package gateway

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/rs/zerolog"
)

const RequestIDHeader = "X-Request-ID"

type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware decorates a round-tripper
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain wraps base so that the first middleware is the outermost.
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// RequestID sets X-Request-ID on requests that do not carry one
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			r := req.Clone(req.Context())
			r.Header.Set(RequestIDHeader, uuid.New().String())
			return next.RoundTrip(r)
		})
	}
}

// Logging writes one line per dispatch. Headers are never logged.
func Logging(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			started := time.Now()
			resp, err := next.RoundTrip(req)

			attempt, _ := AttemptFromContext(req.Context())
			evt := logger.Debug()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt = evt.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("attempt", attempt.Number).
				Str("request_id", req.Header.Get(RequestIDHeader)).
				Dur("duration", time.Since(started))
			if resp != nil {
				evt = evt.Int("status", resp.StatusCode)
			}
			evt.Msg("api request")

			return resp, err
		})
	}
}

// Caching serves cacheable GET responses from disk, or from memory when
// cacheDir is empty. Entries are not keyed by user.
func Caching(cacheDir string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		var cache httpcache.Cache
		if cacheDir == "" {
			cache = httpcache.NewMemoryCache()
		} else {
			cache = diskcache.New(cacheDir)
		}
		t := httpcache.NewTransport(cache)
		t.Transport = next
		return t
	}
}
