package sessions

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jrsteele09/fintrack-client/credentials"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is a snapshot of who is logged in.
// IsAuthenticated is always equal to User != nil.
type State struct {
	User            *users.User
	IsAuthenticated bool
	IsLoading       bool
}

// Credentials is the part of durable credential storage the store needs
type Credentials interface {
	Pair(ctx context.Context) (credentials.Pair, error)
	CacheUser(ctx context.Context, u *users.User) error
	Clear(ctx context.Context) error
}

var _ Credentials = (*credentials.Store)(nil)

type subscription struct {
	id uint64
	fn func(State)
}

// Store is the single source of truth for the current session. It starts in
// the loading state until Bootstrap resolves it.
type Store struct {
	creds        Credentials
	log          zerolog.Logger
	lock         sync.RWMutex
	state        State
	subscribers  []subscription
	nextID       uint64
	bootstrapped atomic.Bool
}

type StoreOption func(*Store)

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = logger
	}
}

func New(creds Credentials, options ...StoreOption) *Store {
	s := &Store{
		creds: creds,
		log:   log.Logger,
		state: State{IsLoading: true},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// State returns a copy of the current session
func (s *Store) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.snapshot()
}

// SetUser replaces the current user. It never touches storage.
func (s *Store) SetUser(user *users.User) {
	s.mutate(func(st *State) {
		st.User = user.Clone()
		st.IsAuthenticated = user != nil
	})
}

func (s *Store) SetLoading(loading bool) {
	s.mutate(func(st *State) {
		st.IsLoading = loading
	})
}

// Logout clears stored credentials and the cached user, then resets the
// session. The session is reset even when storage fails. Safe to call when
// already logged out.
func (s *Store) Logout(ctx context.Context) error {
	err := s.creds.Clear(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to clear stored credentials on logout")
	}
	s.mutate(func(st *State) {
		st.User = nil
		st.IsAuthenticated = false
	})
	return err
}

// Subscribe registers fn to receive every new snapshot. Subscribers run in
// subscription order, outside the store lock, and may call back into the store.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lock.Lock()
			defer s.lock.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) mutate(fn func(*State)) {
	s.lock.Lock()
	fn(&s.state)
	snap := s.snapshot()
	subs := make([]subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.lock.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

// snapshot must be called with the lock held
func (s *Store) snapshot() State {
	st := s.state
	st.User = s.state.User.Clone()
	return st
}

// ProfileFetcher loads the identity of whoever the stored credentials belong to
type ProfileFetcher interface {
	Profile(ctx context.Context) (*users.User, error)
}

type ProfileFetcherFunc func(ctx context.Context) (*users.User, error)

func (f ProfileFetcherFunc) Profile(ctx context.Context) (*users.User, error) {
	return f(ctx)
}

// Bootstrap restores the session from storage once per process. Without a
// stored pair no network call is made. With a pair the profile is fetched
// and any failure resolves to logged out. IsLoading is always false on return.
// The returned error describes a failure that has already been handled.
func (s *Store) Bootstrap(ctx context.Context, fetcher ProfileFetcher) error {
	if !s.bootstrapped.CompareAndSwap(false, true) {
		return errors.ErrAlreadyBootstrapped
	}
	defer s.SetLoading(false)

	pair, err := s.creds.Pair(ctx)
	if err != nil {
		_ = s.Logout(ctx)
		return errors.Wrapf(err, "bootstrap: read credentials")
	}

	if !pair.Present() {
		if pair.AccessToken != "" || pair.RefreshToken != "" {
			s.log.Debug().Msg("discarding incomplete credential pair")
			_ = s.Logout(ctx)
		}
		return nil
	}

	user, err := fetchProfile(ctx, fetcher)
	if err != nil {
		s.log.Warn().Err(err).Msg("session verification failed, logging out")
		_ = s.Logout(ctx)
		return errors.Wrapf(err, "bootstrap: verify session")
	}

	if err := s.creds.CacheUser(ctx, user); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache user")
	}
	s.SetUser(user)
	return nil
}

func fetchProfile(ctx context.Context, fetcher ProfileFetcher) (user *users.User, returnError error) {
	defer func() {
		if r := recover(); r != nil {
			returnError = errors.Wrapf(errors.ErrInternal, "profile fetch panicked: %v", r)
		}
	}()

	user, err := fetcher.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.Wrapf(errors.ErrUserNotFound, "empty profile")
	}
	return user, nil
}
