package api

import (
	"context"
	"net/http"

	"github.com/jrsteele09/fintrack-client/cards"
)

func (c *Client) ListCards(ctx context.Context) ([]cards.Card, error) {
	var out []cards.Card
	if err := c.do(ctx, http.MethodGet, RouteCards, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCard(ctx context.Context, id string) (*cards.Card, error) {
	var out cards.Card
	if err := c.do(ctx, http.MethodGet, idPath(RouteCards, id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCard(ctx context.Context, p cards.Payload) (*cards.Card, error) {
	var out cards.Card
	if err := c.do(ctx, http.MethodPost, RouteCards, nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCard(ctx context.Context, id string, p cards.UpdatePayload) (*cards.Card, error) {
	var out cards.Card
	if err := c.do(ctx, http.MethodPut, idPath(RouteCards, id), nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, idPath(RouteCards, id), nil, nil, nil)
}
