package valkeyrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/jrsteele09/fintrack-client/credentials"
	"github.com/jrsteele09/fintrack-client/internal/errors"
)

var _ credentials.Repo = (*ValkeyRepo)(nil)

// ValkeyRepo keeps credentials in Valkey so several processes can share one session.
type ValkeyRepo struct {
	valkey valkey.Client
	prefix string
}

func New(valkeyClient valkey.Client, prefix string) *ValkeyRepo {
	prefix = strings.TrimSuffix(prefix, ":")
	return &ValkeyRepo{
		valkey: valkeyClient,
		prefix: prefix,
	}
}

// Dial connects to addr and returns a repo that owns the client.
func Dial(addr, prefix string) (*ValkeyRepo, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to valkey at %s: %w", addr, err)
	}
	return New(client, prefix), nil
}

// Close releases the underlying client
func (r *ValkeyRepo) Close() {
	r.valkey.Close()
}

func (r *ValkeyRepo) Get(ctx context.Context, key credentials.Key) (string, error) {
	v, err := r.valkey.Do(ctx, r.valkey.B().Get().Key(r.key(key)).Build()).ToString()
	if err != nil {
		valkeyErr, ok := valkey.IsValkeyErr(err)
		if ok && valkeyErr.IsNil() {
			return "", errors.ErrNotFound
		}
		return "", fmt.Errorf("executing get command: %w", err)
	}
	return v, nil
}

func (r *ValkeyRepo) Set(ctx context.Context, key credentials.Key, value string) error {
	if err := r.valkey.Do(ctx, r.valkey.B().Set().Key(r.key(key)).Value(value).Build()).Error(); err != nil {
		return fmt.Errorf("executing set command: %w", err)
	}
	return nil
}

func (r *ValkeyRepo) Delete(ctx context.Context, keys ...credentials.Key) error {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, r.key(k))
	}
	if err := r.valkey.Do(ctx, r.valkey.B().Del().Key(names...).Build()).Error(); err != nil {
		return fmt.Errorf("executing del command: %w", err)
	}
	return nil
}

func (r *ValkeyRepo) key(k credentials.Key) string {
	return fmt.Sprintf("%s:credentials:%s", r.prefix, k)
}
