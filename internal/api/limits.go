package api

import (
	"context"
)

// Limit kinds accepted by the vhost-limits and user-limits endpoints.
const (
	LimitMaxConnections = "max-connections"
	LimitMaxQueues      = "max-queues"
	LimitMaxChannels    = "max-channels"
)

type VirtualHostLimits struct {
	VirtualHost string           `json:"vhost"`
	Value       map[string]int64 `json:"value"`
}

type UserLimits struct {
	User  string           `json:"user"`
	Value map[string]int64 `json:"value"`
}

type limitValue struct {
	Value int64 `json:"value"`
}

func (c *Client) ListAllVirtualHostLimits(ctx context.Context) ([]VirtualHostLimits, error) {
	var ls []VirtualHostLimits
	err := c.getJSON(ctx, "vhost-limits", nil, &ls)
	return ls, err
}

func (c *Client) ListVirtualHostLimits(ctx context.Context, vhost string) ([]VirtualHostLimits, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	var ls []VirtualHostLimits
	err := c.getJSON(ctx, pathOf("vhost-limits", vhost), nil, &ls)
	return ls, err
}

func (c *Client) SetVirtualHostLimit(ctx context.Context, vhost, kind string, value int64) error {
	if err := requireNames("virtual host", vhost, "limit", kind); err != nil {
		return err
	}
	return c.putJSON(ctx, pathOf("vhost-limits", vhost, kind), limitValue{Value: value})
}

func (c *Client) ClearVirtualHostLimit(ctx context.Context, vhost, kind string) error {
	if err := requireNames("virtual host", vhost, "limit", kind); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("vhost-limits", vhost, kind), false)
}

func (c *Client) ListAllUserLimits(ctx context.Context) ([]UserLimits, error) {
	var ls []UserLimits
	err := c.getJSON(ctx, "user-limits", nil, &ls)
	return ls, err
}

func (c *Client) ListUserLimits(ctx context.Context, user string) ([]UserLimits, error) {
	if err := requireName("user", user); err != nil {
		return nil, err
	}
	var ls []UserLimits
	err := c.getJSON(ctx, pathOf("user-limits", user), nil, &ls)
	return ls, err
}

func (c *Client) SetUserLimit(ctx context.Context, user, kind string, value int64) error {
	if err := requireNames("user", user, "limit", kind); err != nil {
		return err
	}
	return c.putJSON(ctx, pathOf("user-limits", user, kind), limitValue{Value: value})
}

func (c *Client) ClearUserLimit(ctx context.Context, user, kind string) error {
	if err := requireNames("user", user, "limit", kind); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("user-limits", user, kind), false)
}
