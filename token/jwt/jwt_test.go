package jwt_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/token"
	"github.com/jrsteele09/fintrack-client/token/jwt"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settings struct {
	secret string
	ttl    time.Duration
}

func (s settings) GetJWTSecret() string             { return s.secret }
func (s settings) GetAccessTokenTTL() time.Duration { return s.ttl }

type testFixture struct {
	creator   *jwt.Creator
	inspector *jwt.Inspector
	revoked   *token.MemoryDenylist
	user      *users.User
	now       time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	cfg := settings{secret: "test-secret", ttl: 15 * time.Minute}
	f := &testFixture{
		creator: jwt.NewCreator(cfg),
		revoked: token.NewMemoryDenylist(nil),
		user:    &users.User{ID: "user-1", Email: "john@example.com", Name: "John Doe"},
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.inspector = jwt.NewInspector(cfg, f.revoked)

	jwt.NowTimeFunc = func() time.Time { return f.now }
	t.Cleanup(func() { jwt.NowTimeFunc = time.Now })
	return f
}

func TestCreateAndValidate(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.creator.CreateAccessToken(f.user)
	require.NoError(t, err)

	claims, err := f.inspector.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, jwt.Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, f.now.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestTokensAreUnique(t *testing.T) {
	f := setupTestFixture(t)

	a, err := f.creator.CreateAccessToken(f.user)
	require.NoError(t, err)
	b, err := f.creator.CreateAccessToken(f.user)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidate_Expired(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.creator.CreateAccessToken(f.user)
	require.NoError(t, err)

	f.now = f.now.Add(16 * time.Minute)
	_, err = f.inspector.Validate(raw)
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestValidate_Revoked(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.creator.CreateAccessToken(f.user)
	require.NoError(t, err)

	jti, exp, err := f.inspector.ParseAndExtractJTI(raw)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(15*time.Minute).Unix(), exp.Unix())
	require.NoError(t, f.revoked.Revoke(jti, time.Now().Add(time.Hour)))

	_, err = f.inspector.Validate(raw)
	assert.ErrorIs(t, err, errors.ErrTokenRevoked)
}

func TestValidate_Rejects(t *testing.T) {
	f := setupTestFixture(t)

	other := jwt.NewCreator(settings{secret: "other-secret", ttl: time.Minute})
	wrongKey, err := other.CreateAccessToken(f.user)
	require.NoError(t, err)

	noneAlg, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{
		"iss": jwt.Issuer,
		"sub": "user-1",
		"exp": f.now.Add(time.Hour).Unix(),
	}).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	wrongIssuer, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"iss": "someone-else",
		"sub": "user-1",
		"exp": f.now.Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong key", wrongKey},
		{"alg none", noneAlg},
		{"wrong issuer", wrongIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.inspector.Validate(tt.raw)
			assert.ErrorIs(t, err, errors.ErrInvalidToken)
		})
	}
}
