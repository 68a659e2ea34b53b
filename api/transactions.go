package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/fintrack-client/transactions"
)

const transactionKey = "transaction"

func (c *Client) CreateTransaction(ctx context.Context, req transactions.CreateRequest) (*transactions.Transaction, error) {
	return c.transaction(ctx, http.MethodPost, RouteTransactions, req)
}

func (c *Client) ListTransactions(ctx context.Context, params transactions.ListParams) (*transactions.Page, error) {
	var out transactions.Page
	if err := c.do(ctx, http.MethodGet, RouteTransactions, params.Query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*transactions.Transaction, error) {
	return c.transaction(ctx, http.MethodGet, idPath(RouteTransactions, id), nil)
}

func (c *Client) UpdateTransaction(ctx context.Context, req transactions.UpdateRequest) (*transactions.Transaction, error) {
	return c.transaction(ctx, http.MethodPut, idPath(RouteTransactions, req.ID), req)
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, idPath(RouteTransactions, id), nil, nil, nil)
}

func (c *Client) TransactionSummary(ctx context.Context, period transactions.Period) (*transactions.Summary, error) {
	var out transactions.Summary
	if err := c.do(ctx, http.MethodGet, RouteTransactionsSummary, period.Query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) transaction(ctx context.Context, method, path string, in any) (*transactions.Transaction, error) {
	var raw json.RawMessage
	if err := c.do(ctx, method, path, nil, in, &raw); err != nil {
		return nil, err
	}
	t, err := unwrap[transactions.Transaction](raw, transactionKey)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
