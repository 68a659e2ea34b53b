package credentials

import "context"

// Repo is durable key-value storage for credentials. Get returns
// errors.ErrNotFound for a key that was never set or has been deleted.
// Deleting a missing key is not an error.
type Repo interface {
	Get(ctx context.Context, key Key) (string, error)
	Set(ctx context.Context, key Key, value string) error
	Delete(ctx context.Context, keys ...Key) error
}
