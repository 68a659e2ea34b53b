package auth_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/fintrack-client/api"
	"github.com/jrsteele09/fintrack-client/auth"
	"github.com/jrsteele09/fintrack-client/credentials"
	credentialsrepofake "github.com/jrsteele09/fintrack-client/credentials/repofake"
	"github.com/jrsteele09/fintrack-client/gateway"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/sessions"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/jrsteele09/fintrack-client/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "Password123"
)

var testUser = users.User{ID: "user-1", Email: testUserEmail, Name: "John Doe"}

// fakeAPI answers the sign-in endpoints from canned values
type fakeAPI struct {
	loginErr    error
	registerErr error
	logoutErr   error
	profile     *users.User
	profileErr  error
	logouts     []string
	calls       atomic.Int32
}

func (a *fakeAPI) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	a.calls.Add(1)
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return &api.AuthResponse{AccessToken: "A1", RefreshToken: "R1", User: testUser}, nil
}

func (a *fakeAPI) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	a.calls.Add(1)
	if a.registerErr != nil {
		return nil, a.registerErr
	}
	u := testUser
	u.Name = req.Name
	return &api.AuthResponse{AccessToken: "A1", RefreshToken: "R1", User: u}, nil
}

func (a *fakeAPI) Logout(ctx context.Context, refreshToken string) error {
	a.calls.Add(1)
	a.logouts = append(a.logouts, refreshToken)
	return a.logoutErr
}

func (a *fakeAPI) Profile(ctx context.Context) (*users.User, error) {
	a.calls.Add(1)
	if a.profileErr != nil {
		return nil, a.profileErr
	}
	return a.profile, nil
}

func (a *fakeAPI) GoogleLoginURL(redirect string) string {
	return "http://api.test/api/v1/auth/google?redirect_uri=" + url.QueryEscape(redirect)
}

type testFixture struct {
	api       *fakeAPI
	repo      *credentialsrepofake.FakeCredentialsRepo
	creds     *credentials.Store
	session   *sessions.Store
	service   *auth.Service
	navigated []error
}

func setupTestFixture(t *testing.T, seed map[credentials.Key]string) *testFixture {
	t.Helper()
	f := &testFixture{
		api:  &fakeAPI{profile: &testUser},
		repo: credentialsrepofake.NewFakeCredentialsRepo().WithValues(seed),
	}
	f.creds = credentials.NewStore(f.repo)
	f.session = sessions.New(f.creds, sessions.WithLogger(zerolog.Nop()))
	f.service = auth.NewService(f.api, f.creds, f.session,
		auth.WithLogger(zerolog.Nop()),
		auth.WithNavigator(gateway.NavigatorFunc(func(ctx context.Context, reason error) {
			f.navigated = append(f.navigated, reason)
		})),
	)
	return f
}

func TestLoginForm_Validate(t *testing.T) {
	require.NoError(t, auth.LoginForm{Email: testUserEmail, Password: "12345678"}.Validate())

	err := auth.LoginForm{Email: "john.doe", Password: "short"}.Validate()
	require.ErrorIs(t, err, errors.ErrValidation)

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Invalid email address", verrs.Field("email"))
	assert.Equal(t, "Password must be at least 8 characters", verrs.Field("password"))
}

func TestRegisterForm_Validate(t *testing.T) {
	valid := auth.RegisterForm{Name: "Jo", Email: testUserEmail, Password: testUserPassword, ConfirmPassword: testUserPassword}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		form  auth.RegisterForm
		field string
		msg   string
	}{
		{"short name", auth.RegisterForm{Name: "J", Email: testUserEmail, Password: testUserPassword, ConfirmPassword: testUserPassword}, "name", "Name must be at least 2 characters"},
		{"bad email", auth.RegisterForm{Name: "John", Email: "john@", Password: testUserPassword, ConfirmPassword: testUserPassword}, "email", "Invalid email address"},
		{"short password", auth.RegisterForm{Name: "John", Email: testUserEmail, Password: "short", ConfirmPassword: testUserPassword}, "password", "Password must be at least 8 characters"},
		{"short confirm", auth.RegisterForm{Name: "John", Email: testUserEmail, Password: testUserPassword, ConfirmPassword: "short"}, "confirmPassword", "Password must be at least 8 characters"},
		{"mismatch", auth.RegisterForm{Name: "John", Email: testUserEmail, Password: testUserPassword, ConfirmPassword: "Password124"}, "confirmPassword", "Passwords don't match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verrs validation.Errors
			require.True(t, errors.As(tt.form.Validate(), &verrs))
			assert.Equal(t, tt.msg, verrs.Field(tt.field))
		})
	}
}

func TestService_Login(t *testing.T) {
	f := setupTestFixture(t, nil)

	user, err := f.service.Login(context.Background(), auth.LoginForm{Email: testUserEmail, Password: testUserPassword})
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	pair, err := f.creds.Pair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, credentials.Pair{AccessToken: "A1", RefreshToken: "R1"}, pair)

	cached, err := f.creds.CachedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", cached.ID)

	st := f.session.State()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, testUserEmail, st.User.Email)
}

func TestService_LoginValidationNeverCallsAPI(t *testing.T) {
	f := setupTestFixture(t, nil)

	_, err := f.service.Login(context.Background(), auth.LoginForm{Email: "nope", Password: testUserPassword})
	require.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, int32(0), f.api.calls.Load())
	assert.Equal(t, 0, f.repo.Writes())
}

func TestService_LoginBadCredentials(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.api.loginErr = &api.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}

	_, err := f.service.Login(context.Background(), auth.LoginForm{Email: testUserEmail, Password: testUserPassword})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
	assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))
	assert.Equal(t, 0, f.repo.Writes())
	assert.False(t, f.session.State().IsAuthenticated)
	assert.Empty(t, f.navigated)
}

func TestService_Register(t *testing.T) {
	f := setupTestFixture(t, nil)

	user, err := f.service.Register(context.Background(), auth.RegisterForm{
		Name: "Jane Roe", Email: testUserEmail, Password: testUserPassword, ConfirmPassword: testUserPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", user.Name)
	assert.True(t, f.session.State().IsAuthenticated)
	assert.Len(t, f.repo.Snapshot(), 3)
}

func TestService_RegisterEmailTaken(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.api.registerErr = &api.Error{StatusCode: http.StatusConflict, Message: "User already exists"}

	_, err := f.service.Register(context.Background(), auth.RegisterForm{
		Name: "Jane Roe", Email: testUserEmail, Password: testUserPassword, ConfirmPassword: testUserPassword,
	})
	assert.ErrorIs(t, err, errors.ErrEmailTaken)
	assert.Empty(t, f.repo.Snapshot())
}

func TestService_Logout(t *testing.T) {
	f := setupTestFixture(t, nil)
	_, err := f.service.Login(context.Background(), auth.LoginForm{Email: testUserEmail, Password: testUserPassword})
	require.NoError(t, err)

	// A failing server logout must not keep the session alive
	f.api.logoutErr = errors.New("connection refused")
	require.NoError(t, f.service.Logout(context.Background()))

	assert.Equal(t, []string{"R1"}, f.api.logouts)
	assert.Empty(t, f.repo.Snapshot())
	assert.False(t, f.session.State().IsAuthenticated)

	// Logged out already: no server call, still fine
	require.NoError(t, f.service.Logout(context.Background()))
	assert.Len(t, f.api.logouts, 1)
}

func TestService_CompleteOAuthCallback(t *testing.T) {
	f := setupTestFixture(t, nil)

	query := url.Values{}
	query.Set(auth.ParamAccessToken, "A-oauth")
	query.Set(auth.ParamRefreshToken, "R-oauth")

	user, err := f.service.CompleteOAuthCallback(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	snapshot := f.repo.Snapshot()
	assert.Equal(t, "A-oauth", snapshot[credentials.KeyAccessToken])
	assert.Equal(t, "R-oauth", snapshot[credentials.KeyRefreshToken])
	assert.Contains(t, snapshot[credentials.KeyUser], `"id":"user-1"`)
	assert.True(t, f.session.State().IsAuthenticated)
	assert.Empty(t, f.navigated)
}

func TestService_CompleteOAuthCallbackRejects(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
	}{
		{"missing refresh token", url.Values{auth.ParamAccessToken: {"A1"}}},
		{"missing access token", url.Values{auth.ParamRefreshToken: {"R1"}}},
		{"empty", url.Values{}},
		{"provider error", url.Values{auth.ParamError: {"access_denied"}, auth.ParamAccessToken: {"A1"}, auth.ParamRefreshToken: {"R1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, nil)

			_, err := f.service.CompleteOAuthCallback(context.Background(), tt.query)
			require.ErrorIs(t, err, errors.ErrInvalidCallback)
			assert.Equal(t, 0, f.repo.Writes())
			assert.Equal(t, 0, f.repo.Deletes())
			assert.Equal(t, int32(0), f.api.calls.Load())
			require.Len(t, f.navigated, 1)
			assert.ErrorIs(t, f.navigated[0], errors.ErrInvalidCallback)
		})
	}
}

func TestService_CompleteOAuthCallbackProfileFailureLogsOut(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.api.profileErr = &api.Error{StatusCode: http.StatusInternalServerError, Message: "boom"}

	query := url.Values{auth.ParamAccessToken: {"A1"}, auth.ParamRefreshToken: {"R1"}}
	_, err := f.service.CompleteOAuthCallback(context.Background(), query)
	require.Error(t, err)

	assert.Empty(t, f.repo.Snapshot())
	assert.False(t, f.session.State().IsAuthenticated)
	assert.Len(t, f.navigated, 1)
}

func TestService_LoginURL(t *testing.T) {
	f := setupTestFixture(t, nil)
	assert.Equal(t, "http://api.test/api/v1/auth/google?redirect_uri=http%3A%2F%2F127.0.0.1%3A8765%2Fcallback",
		f.service.LoginURL("http://127.0.0.1:8765/callback"))
}

func TestCallbackHandler(t *testing.T) {
	f := setupTestFixture(t, nil)
	h := auth.NewCallbackHandler(f.service)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?access_token=A1&refresh_token=R1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signed in as John Doe")

	res := <-h.Result()
	require.NoError(t, res.Err)
	assert.Equal(t, "user-1", res.User.ID)

	again := httptest.NewRecorder()
	h.ServeHTTP(again, httptest.NewRequest(http.MethodGet, "/callback?access_token=A2&refresh_token=R2", nil))
	assert.Equal(t, http.StatusConflict, again.Code)
	assert.Equal(t, "A1", f.repo.Snapshot()[credentials.KeyAccessToken])
}

func TestCallbackHandler_FormPost(t *testing.T) {
	f := setupTestFixture(t, nil)
	h := auth.NewCallbackHandler(f.service)

	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader("access_token=A1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign-in failed")
	res := <-h.Result()
	assert.ErrorIs(t, res.Err, errors.ErrInvalidCallback)
}

func TestServeCallback(t *testing.T) {
	f := setupTestFixture(t, nil)
	h := auth.NewCallbackHandler(f.service)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	callbackURL := auth.CallbackURL(ln.Addr())

	go func() {
		resp, err := http.Get(callbackURL + "?access_token=A1&refresh_token=R1")
		if err == nil {
			resp.Body.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := auth.ServeCallback(ctx, ln, h)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestServeCallback_ContextCancelled(t *testing.T) {
	f := setupTestFixture(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = auth.ServeCallback(ctx, ln, auth.NewCallbackHandler(f.service))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
