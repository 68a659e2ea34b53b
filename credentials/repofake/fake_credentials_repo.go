package credentialsrepofake

import (
	"context"
	"maps"
	"sync"

	"github.com/jrsteele09/fintrack-client/credentials"
	"github.com/jrsteele09/fintrack-client/internal/errors"
)

var _ credentials.Repo = (*FakeCredentialsRepo)(nil)

// FakeCredentialsRepo keeps credentials in memory and counts mutations so
// tests can assert that a flow did not touch storage.
type FakeCredentialsRepo struct {
	values  map[credentials.Key]string
	writes  int
	deletes int
	lock    sync.RWMutex
}

func NewFakeCredentialsRepo() *FakeCredentialsRepo {
	return &FakeCredentialsRepo{
		values: make(map[credentials.Key]string),
	}
}

// WithValues seeds the repo without counting writes
func (r *FakeCredentialsRepo) WithValues(values map[credentials.Key]string) *FakeCredentialsRepo {
	r.lock.Lock()
	defer r.lock.Unlock()
	maps.Copy(r.values, values)
	return r
}

func (r *FakeCredentialsRepo) Get(_ context.Context, key credentials.Key) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (r *FakeCredentialsRepo) Set(_ context.Context, key credentials.Key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.values[key] = value
	r.writes++
	return nil
}

func (r *FakeCredentialsRepo) Delete(_ context.Context, keys ...credentials.Key) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, k := range keys {
		delete(r.values, k)
	}
	r.deletes++
	return nil
}

// Writes returns the number of Set calls
func (r *FakeCredentialsRepo) Writes() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.writes
}

// Deletes returns the number of Delete calls
func (r *FakeCredentialsRepo) Deletes() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.deletes
}

// Snapshot returns a copy of everything stored
func (r *FakeCredentialsRepo) Snapshot() map[credentials.Key]string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return maps.Clone(r.values)
}
