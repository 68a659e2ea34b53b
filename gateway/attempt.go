package gateway

import "context"

// Attempt describes one dispatch of a logical call. A fresh value is stored in
// the request context of every dispatch; nothing shared is ever mutated.
type Attempt struct {
	Number int    // 1 for the first dispatch, 2 for the retry after a refresh
	Token  string // access token attached to this dispatch, "" when none
}

// Retried reports whether this dispatch is the single retry of its call
func (a Attempt) Retried() bool {
	return a.Number > 1
}

type attemptKey struct{}

type anonymousKey struct{}

func withAttempt(ctx context.Context, a Attempt) context.Context {
	return context.WithValue(ctx, attemptKey{}, a)
}

// AttemptFromContext returns the attempt a request is being dispatched as.
// Round-trippers below the gateway can use it for logging and metrics.
func AttemptFromContext(ctx context.Context) (Attempt, bool) {
	a, ok := ctx.Value(attemptKey{}).(Attempt)
	return a, ok
}

// Anonymous marks a call whose 401 means "bad input" rather than "expired
// session", such as a login with a wrong password. The 401 is returned as is.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}
