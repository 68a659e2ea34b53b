package credentials_test

import (
	"context"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/fintrack-client/credentials"
	credentialsrepofake "github.com/jrsteele09/fintrack-client/credentials/repofake"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	repo  *credentialsrepofake.FakeCredentialsRepo
	store *credentials.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	repo := credentialsrepofake.NewFakeCredentialsRepo()
	return &testFixture{repo: repo, store: credentials.NewStore(repo)}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwtlib.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)

	got, ok := credentials.ExpiresAt(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = credentials.ExpiresAt("opaque-token")
	assert.False(t, ok)

	_, ok = credentials.ExpiresAt("not.a.jwt")
	assert.False(t, ok)
}

func TestPair(t *testing.T) {
	assert.False(t, credentials.Pair{AccessToken: "A1"}.Present())
	assert.True(t, credentials.Pair{AccessToken: "A1", RefreshToken: "R1"}.Present())

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := credentials.Pair{AccessToken: signedToken(t, exp), RefreshToken: "R1"}.OAuth2()
	assert.Equal(t, "Bearer", tok.Type())
	assert.True(t, exp.Equal(tok.Expiry))
	assert.True(t, tok.Valid())
}

func TestStore_SaveAndRead(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	pair, err := f.store.Pair(ctx)
	require.NoError(t, err)
	assert.False(t, pair.Present())

	require.NoError(t, f.store.SavePair(ctx, credentials.Pair{AccessToken: "A1", RefreshToken: "R1"}))
	pair, err = f.store.Pair(ctx)
	require.NoError(t, err)
	assert.Equal(t, credentials.Pair{AccessToken: "A1", RefreshToken: "R1"}, pair)

	err = f.store.SavePair(ctx, credentials.Pair{AccessToken: "A2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidToken))
}

func TestStore_SaveRefreshed(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SavePair(ctx, credentials.Pair{AccessToken: "A1", RefreshToken: "R1"}))

	t.Run("without rotation keeps refresh token", func(t *testing.T) {
		require.NoError(t, f.store.SaveRefreshed(ctx, credentials.Pair{AccessToken: "A2"}))
		pair, err := f.store.Pair(ctx)
		require.NoError(t, err)
		assert.Equal(t, credentials.Pair{AccessToken: "A2", RefreshToken: "R1"}, pair)
	})

	t.Run("with rotation", func(t *testing.T) {
		require.NoError(t, f.store.SaveRefreshed(ctx, credentials.Pair{AccessToken: "A3", RefreshToken: "R3"}))
		pair, err := f.store.Pair(ctx)
		require.NoError(t, err)
		assert.Equal(t, credentials.Pair{AccessToken: "A3", RefreshToken: "R3"}, pair)
	})

	t.Run("empty access token rejected", func(t *testing.T) {
		require.Error(t, f.store.SaveRefreshed(ctx, credentials.Pair{RefreshToken: "R4"}))
	})
}

func TestStore_CachedUserAndClear(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	u, err := f.store.CachedUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, f.store.CacheUser(ctx, &users.User{ID: "user-1", Email: "john@example.com", Name: "John"}))
	u, err = f.store.CachedUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "user-1", u.ID)

	require.NoError(t, f.store.SavePair(ctx, credentials.Pair{AccessToken: "A1", RefreshToken: "R1"}))
	require.NoError(t, f.store.Clear(ctx))
	assert.Empty(t, f.repo.Snapshot())
}

func TestStore_CorruptCachedUserIsDropped(t *testing.T) {
	f := setupTestFixture(t)
	f.repo.WithValues(map[credentials.Key]string{credentials.KeyUser: "{not json"})

	u, err := f.store.CachedUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.NotContains(t, f.repo.Snapshot(), credentials.KeyUser)
}
