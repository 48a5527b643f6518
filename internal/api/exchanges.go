package api

import (
	"context"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

type ExchangeInfo struct {
	Name        string                 `json:"name"`
	VirtualHost string                 `json:"vhost"`
	Type        string                 `json:"type"`
	Durable     bool                   `json:"durable"`
	AutoDelete  bool                   `json:"auto_delete"`
	Internal    bool                   `json:"internal"`
	Arguments   definitions.XArguments `json:"arguments"`
	Policy      string                 `json:"policy,omitempty"`
}

type ExchangeParams struct {
	Name       string                 `json:"-"`
	Type       string                 `json:"type"`
	Durable    bool                   `json:"durable"`
	AutoDelete bool                   `json:"auto_delete"`
	Internal   bool                   `json:"internal"`
	Arguments  definitions.XArguments `json:"arguments"`
}

func (p *ExchangeParams) OptionalArguments() map[string]any { return p.Arguments }

func (p *ExchangeParams) SetOptionalArguments(m map[string]any) { p.Arguments = m }

func (p *ExchangeParams) ArgumentKeyPrefix() string { return definitions.XArgumentPrefix }

func (c *Client) ListExchanges(ctx context.Context) ([]ExchangeInfo, error) {
	var xs []ExchangeInfo
	err := c.getJSON(ctx, "exchanges", nil, &xs)
	return xs, err
}

func (c *Client) ListExchangesIn(ctx context.Context, vhost string) ([]ExchangeInfo, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	var xs []ExchangeInfo
	err := c.getJSON(ctx, pathOf("exchanges", vhost), nil, &xs)
	return xs, err
}

func (c *Client) GetExchangeInfo(ctx context.Context, vhost, name string) (ExchangeInfo, error) {
	var x ExchangeInfo
	if err := requireNames("virtual host", vhost, "exchange", name); err != nil {
		return x, err
	}
	err := c.getJSON(ctx, pathOf("exchanges", vhost, name), nil, &x)
	return x, err
}

func (c *Client) DeclareExchange(ctx context.Context, vhost string, params ExchangeParams) error {
	if err := requireNames("virtual host", vhost, "exchange", params.Name); err != nil {
		return err
	}
	if params.Type == "" {
		params.Type = "direct"
	}
	return c.putJSON(ctx, pathOf("exchanges", vhost, params.Name), params)
}

func (c *Client) DeleteExchange(ctx context.Context, vhost, name string, idempotently bool) error {
	if err := requireNames("virtual host", vhost, "exchange", name); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("exchanges", vhost, name), idempotently)
}
