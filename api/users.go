package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/fintrack-client/dashboard"
	"github.com/jrsteele09/fintrack-client/sessions"
	"github.com/jrsteele09/fintrack-client/users"
)

var _ sessions.ProfileFetcher = (*Client)(nil)

// Profile returns the identity the current access token belongs to
func (c *Client) Profile(ctx context.Context) (*users.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, RouteUsersProfile, nil, nil, &raw); err != nil {
		return nil, err
	}
	u, err := unwrap[users.User](raw, "user")
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, p users.Profile) (*users.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, RouteUsersProfile, nil, p, &raw); err != nil {
		return nil, err
	}
	u, err := unwrap[users.User](raw, "user")
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, RouteUsersAccount, nil, nil, nil)
}

func (c *Client) Dashboard(ctx context.Context) (*dashboard.Data, error) {
	var out dashboard.Data
	if err := c.do(ctx, http.MethodGet, RouteUsersDashboard, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
