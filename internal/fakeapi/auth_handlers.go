package fakeapi

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/fintrack-client/api"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/token/refresh"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/jrsteele09/fintrack-client/validation"
)

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func (s *Server) register(c *gin.Context) {
	var req api.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	errs := validation.Check(c.Request.Context(), req, users.Messages)
	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		errs.Add("password", err.Error())
	}
	if err := errs.Err(); err != nil {
		abortValidation(c, err)
		return
	}

	if _, err := s.users.GetByEmail(req.Email); err == nil {
		abortError(c, http.StatusConflict, "User already exists")
		return
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}
	now := s.now().UTC()
	user := &users.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Upsert(user); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	s.respondSignedIn(c, http.StatusCreated, user)
}

func (s *Server) login(c *gin.Context) {
	var req api.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.users.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil || user.PasswordHash == "" || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
		abortError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.respondSignedIn(c, http.StatusOK, user)
}

func (s *Server) respondSignedIn(c *gin.Context, status int, user *users.User) {
	accessToken, refreshToken, err := s.issue(user)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue tokens")
		abortError(c, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}
	c.JSON(status, api.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

func (s *Server) issue(user *users.User) (accessToken, refreshToken string, err error) {
	accessToken, err = s.access.CreateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.refresh.Create(user.ID)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// refreshTokens exchanges a refresh token for a new access token. With
// rotation on the presented token is consumed and a new one returned.
func (s *Server) refreshTokens(c *gin.Context) {
	var req api.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		s.metrics.refreshes.WithLabelValues("missing").Inc()
		abortError(c, http.StatusUnauthorized, "Refresh token required")
		return
	}

	var (
		userID string
		next   string
		err    error
	)
	if s.rotateRefresh {
		userID, next, err = s.refresh.Rotate(req.RefreshToken)
	} else {
		var stored *refresh.StoredRefreshToken
		if stored, err = s.refresh.Verify(req.RefreshToken); err == nil {
			userID = stored.UserID
		}
	}
	if err != nil {
		s.metrics.refreshes.WithLabelValues("rejected").Inc()
		abortError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		s.metrics.refreshes.WithLabelValues("rejected").Inc()
		abortError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	accessToken, err := s.access.CreateAccessToken(user)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}
	s.metrics.refreshes.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, tokenResponse{AccessToken: accessToken, RefreshToken: next})
}

// logout drops the refresh token in the body and revokes the bearer token
// when one is sent. It succeeds even when neither is known.
func (s *Server) logout(c *gin.Context) {
	var req api.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		if err := s.refresh.Delete(req.RefreshToken); err != nil && !errors.Is(err, errors.ErrNotFound) {
			s.log.Warn().Err(err).Msg("failed to delete refresh token")
		}
	}
	if raw := bearerToken(c.GetHeader("Authorization")); raw != "" {
		if err := s.RevokeAccessToken(raw); err != nil {
			s.log.Debug().Err(err).Msg("logout carried an unusable access token")
		}
	}
	message(c, http.StatusOK, "Logged out successfully")
}

// googleLogin stands in for the provider round trip: it signs the configured
// Google account in and redirects to redirect_uri with the tokens in the query.
func (s *Server) googleLogin(c *gin.Context) {
	target, err := loopbackRedirect(c.Query("redirect_uri"))
	if err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.googleUser()
	if err != nil {
		redirectWithError(c, target, "account_unavailable")
		return
	}
	accessToken, refreshToken, err := s.issue(user)
	if err != nil {
		redirectWithError(c, target, "token_issue_failed")
		return
	}

	q := target.Query()
	q.Set("access_token", accessToken)
	q.Set("refresh_token", refreshToken)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}

// googleUser finds the account linked to the provider identity, creating it on first use
func (s *Server) googleUser() (*users.User, error) {
	user, err := s.users.GetByEmail(s.google.Email)
	if err == nil {
		if user.GoogleID == "" {
			user.GoogleID = s.google.ID
			user.UpdatedAt = s.now().UTC()
			if err := s.users.Upsert(user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, errors.ErrUserNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	user = &users.User{
		Email:     s.google.Email,
		Name:      s.google.Name,
		GoogleID:  s.google.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Upsert(user); err != nil {
		return nil, err
	}
	return user, nil
}

func redirectWithError(c *gin.Context, target *url.URL, reason string) {
	q := target.Query()
	q.Set("error", reason)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}

// loopbackRedirect only accepts http redirects to this machine
func loopbackRedirect(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("redirect_uri is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "http" {
		return nil, errors.New("redirect_uri must be an http URL")
	}
	host := u.Hostname()
	if host == "localhost" {
		return u, nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return u, nil
	}
	return nil, errors.New("redirect_uri must point at a loopback address")
}
