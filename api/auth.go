package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/fintrack-client/credentials"
	"github.com/jrsteele09/fintrack-client/gateway"
	"github.com/jrsteele09/fintrack-client/users"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=8"`
	Name     string `json:"name" validate:"min=2"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	User         users.User `json:"user"`
}

func (r AuthResponse) Pair() credentials.Pair {
	return credentials.Pair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Login exchanges an email and password for a credential pair. A 401 here
// means bad credentials and is returned as *Error without touching the session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(gateway.Anonymous(ctx), http.MethodPost, RouteAuthLogin, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(gateway.Anonymous(ctx), http.MethodPost, RouteAuthRegister, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the server to revoke the refresh token
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(gateway.Anonymous(ctx), http.MethodPost, RouteAuthLogout, nil, LogoutRequest{RefreshToken: refreshToken}, nil)
}

// GoogleLoginURL is where the browser starts the provider sign-in. redirect,
// when set, asks the API to send the tokens to that URL instead of its default.
func (c *Client) GoogleLoginURL(redirect string) string {
	q := url.Values{}
	if redirect != "" {
		q.Set("redirect_uri", redirect)
	}
	return c.endpoint(RouteAuthGoogle, q)
}
