package gateway

import "context"

// Navigator moves the user to the login entry point after the session is torn down.
type Navigator interface {
	ToLogin(ctx context.Context, reason error)
}

type NavigatorFunc func(ctx context.Context, reason error)

func (f NavigatorFunc) ToLogin(ctx context.Context, reason error) {
	f(ctx, reason)
}
