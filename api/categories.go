package api

import (
	"context"
	"net/http"

	"github.com/jrsteele09/fintrack-client/categories"
	"github.com/jrsteele09/fintrack-client/transactions"
)

func (c *Client) CreateCategory(ctx context.Context, req categories.CreateRequest) (*categories.Category, error) {
	var out categories.Category
	if err := c.do(ctx, http.MethodPost, RouteCategories, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories returns every category, or only those of typ when it is set
func (c *Client) ListCategories(ctx context.Context, typ categories.Type) ([]categories.Category, error) {
	var out categories.List
	if err := c.do(ctx, http.MethodGet, RouteCategories, categories.TypeQuery(typ), nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (*categories.Category, error) {
	var out categories.Category
	if err := c.do(ctx, http.MethodGet, idPath(RouteCategories, id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, req categories.UpdateRequest) (*categories.Category, error) {
	var out categories.Category
	if err := c.do(ctx, http.MethodPut, idPath(RouteCategories, req.ID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, idPath(RouteCategories, id), nil, nil, nil)
}

func (c *Client) CategoryStats(ctx context.Context, id string, period transactions.Period) (*categories.Stats, error) {
	var out categories.Stats
	if err := c.do(ctx, http.MethodGet, idPath(RouteCategories, id)+StatsSuffix, period.Query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
