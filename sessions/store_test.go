package sessions_test

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/fintrack-client/credentials"
	credentialsrepofake "github.com/jrsteele09/fintrack-client/credentials/repofake"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/sessions"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = &users.User{ID: "user-1", Email: "john.doe@example.com", Name: "John Doe"}

type testFixture struct {
	repo    *credentialsrepofake.FakeCredentialsRepo
	creds   *credentials.Store
	store   *sessions.Store
	fetches atomic.Int32
}

func setupTestFixture(t *testing.T, seed map[credentials.Key]string) *testFixture {
	t.Helper()
	repo := credentialsrepofake.NewFakeCredentialsRepo().WithValues(seed)
	creds := credentials.NewStore(repo)
	return &testFixture{
		repo:  repo,
		creds: creds,
		store: sessions.New(creds),
	}
}

func (f *testFixture) fetcher(user *users.User, err error) sessions.ProfileFetcher {
	return sessions.ProfileFetcherFunc(func(ctx context.Context) (*users.User, error) {
		f.fetches.Add(1)
		return user, err
	})
}

func storedPair() map[credentials.Key]string {
	return map[credentials.Key]string{
		credentials.KeyAccessToken:  "A1",
		credentials.KeyRefreshToken: "R1",
	}
}

func assertConsistent(t *testing.T, st sessions.State) {
	t.Helper()
	assert.Equal(t, st.User != nil, st.IsAuthenticated)
}

func TestStore_InitialState(t *testing.T) {
	f := setupTestFixture(t, nil)
	st := f.store.State()
	assert.True(t, st.IsLoading)
	assert.Nil(t, st.User)
	assert.False(t, st.IsAuthenticated)
}

func TestStore_SetUserDoesNotTouchStorage(t *testing.T) {
	f := setupTestFixture(t, nil)

	f.store.SetUser(testUser)
	st := f.store.State()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "user-1", st.User.ID)
	assert.Zero(t, f.repo.Writes())
	assert.Zero(t, f.repo.Deletes())

	// snapshots are copies
	st.User.Name = "changed"
	assert.Equal(t, "John Doe", f.store.State().User.Name)
}

func TestStore_LogoutIsIdempotent(t *testing.T) {
	f := setupTestFixture(t, storedPair())
	f.store.SetUser(testUser)

	require.NoError(t, f.store.Logout(context.Background()))
	require.NoError(t, f.store.Logout(context.Background()))

	st := f.store.State()
	assert.Nil(t, st.User)
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, f.repo.Snapshot())
}

func TestStore_AuthenticatedMatchesUserForAnySequence(t *testing.T) {
	f := setupTestFixture(t, storedPair())
	rnd := rand.New(rand.NewSource(42))
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		switch rnd.Intn(4) {
		case 0:
			f.store.SetUser(testUser)
		case 1:
			f.store.SetUser(nil)
		case 2:
			f.store.SetLoading(rnd.Intn(2) == 0)
		case 3:
			_ = f.store.Logout(ctx)
		}
		assertConsistent(t, f.store.State())
	}
}

func TestStore_Subscribe(t *testing.T) {
	f := setupTestFixture(t, nil)

	var got []sessions.State
	unsubscribe := f.store.Subscribe(func(st sessions.State) {
		got = append(got, st)
	})

	var order []string
	f.store.Subscribe(func(sessions.State) { order = append(order, "first") })
	f.store.Subscribe(func(sessions.State) { order = append(order, "second") })

	f.store.SetUser(testUser)
	f.store.SetLoading(false)
	unsubscribe()
	unsubscribe()
	f.store.SetUser(nil)

	require.Len(t, got, 2)
	assert.True(t, got[0].IsAuthenticated)
	assert.True(t, got[0].IsLoading)
	assert.False(t, got[1].IsLoading)
	assert.Equal(t, []string{"first", "second", "first", "second", "first", "second"}, order)
}

func TestStore_SubscriberMayCallBack(t *testing.T) {
	f := setupTestFixture(t, nil)
	var seen sessions.State
	f.store.Subscribe(func(sessions.State) {
		seen = f.store.State()
	})
	f.store.SetUser(testUser)
	assert.True(t, seen.IsAuthenticated)
}

func TestStore_ConcurrentMutations(t *testing.T) {
	f := setupTestFixture(t, storedPair())
	f.store.Subscribe(func(st sessions.State) {
		assertConsistent(t, st)
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				f.store.SetUser(testUser)
			} else {
				_ = f.store.Logout(context.Background())
			}
		}(i)
	}
	wg.Wait()
	assertConsistent(t, f.store.State())
}

func TestBootstrap(t *testing.T) {
	t.Run("no stored tokens makes no network call", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		require.NoError(t, f.store.Bootstrap(context.Background(), f.fetcher(testUser, nil)))

		st := f.store.State()
		assert.False(t, st.IsLoading)
		assert.Nil(t, st.User)
		assert.Zero(t, f.fetches.Load())
	})

	t.Run("valid tokens restore the user", func(t *testing.T) {
		f := setupTestFixture(t, storedPair())
		require.NoError(t, f.store.Bootstrap(context.Background(), f.fetcher(testUser, nil)))

		st := f.store.State()
		assert.False(t, st.IsLoading)
		assert.True(t, st.IsAuthenticated)
		assert.Equal(t, int32(1), f.fetches.Load())

		cached, err := f.creds.CachedUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "user-1", cached.ID)
	})

	t.Run("unreachable profile endpoint logs out", func(t *testing.T) {
		f := setupTestFixture(t, storedPair())
		f.repo.WithValues(map[credentials.Key]string{credentials.KeyUser: `{"id":"stale"}`})

		err := f.store.Bootstrap(context.Background(), f.fetcher(nil, errors.New("dial tcp: connection refused")))
		require.Error(t, err)

		st := f.store.State()
		assert.False(t, st.IsLoading)
		assert.Nil(t, st.User)
		assert.Empty(t, f.repo.Snapshot())
	})

	t.Run("panicking fetcher resolves to logged out", func(t *testing.T) {
		f := setupTestFixture(t, storedPair())
		fetcher := sessions.ProfileFetcherFunc(func(context.Context) (*users.User, error) {
			panic("boom")
		})

		err := f.store.Bootstrap(context.Background(), fetcher)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInternal))
		assert.False(t, f.store.State().IsLoading)
		assert.Empty(t, f.repo.Snapshot())
	})

	t.Run("incomplete pair is discarded without a network call", func(t *testing.T) {
		f := setupTestFixture(t, map[credentials.Key]string{credentials.KeyAccessToken: "A1"})
		require.NoError(t, f.store.Bootstrap(context.Background(), f.fetcher(testUser, nil)))
		assert.Zero(t, f.fetches.Load())
		assert.Empty(t, f.repo.Snapshot())
		assert.False(t, f.store.State().IsLoading)
	})

	t.Run("runs once", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		require.NoError(t, f.store.Bootstrap(context.Background(), f.fetcher(testUser, nil)))
		err := f.store.Bootstrap(context.Background(), f.fetcher(testUser, nil))
		assert.True(t, errors.Is(err, errors.ErrAlreadyBootstrapped))
	})

	t.Run("loading goes false exactly once", func(t *testing.T) {
		f := setupTestFixture(t, storedPair())
		var transitions int
		last := f.store.State().IsLoading
		f.store.Subscribe(func(st sessions.State) {
			if last && !st.IsLoading {
				transitions++
			}
			last = st.IsLoading
		})
		require.NoError(t, f.store.Bootstrap(context.Background(), f.fetcher(testUser, nil)))
		assert.Equal(t, 1, transitions)
	})
}
