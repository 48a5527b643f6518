package api

import (
	"context"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

// PermissionsInfo uses the same shape as exported definitions.
type PermissionsInfo = definitions.Permissions

type TopicPermissionsInfo = definitions.TopicPermissions

// PermissionsParams is the body of PUT /api/permissions/{vhost}/{user}.
type PermissionsParams struct {
	User        string `json:"-"`
	VirtualHost string `json:"-"`
	Configure   string `json:"configure"`
	Write       string `json:"write"`
	Read        string `json:"read"`
}

type TopicPermissionsParams struct {
	User        string `json:"-"`
	VirtualHost string `json:"-"`
	Exchange    string `json:"exchange"`
	Write       string `json:"write"`
	Read        string `json:"read"`
}

func (c *Client) ListPermissions(ctx context.Context) ([]PermissionsInfo, error) {
	var ps []PermissionsInfo
	err := c.getJSON(ctx, "permissions", nil, &ps)
	return ps, err
}

// ListPermissionsIn lists the permissions granted in a virtual host.
func (c *Client) ListPermissionsIn(ctx context.Context, vhost string) ([]PermissionsInfo, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	var ps []PermissionsInfo
	err := c.getJSON(ctx, pathOf("vhosts", vhost, "permissions"), nil, &ps)
	return ps, err
}

func (c *Client) ListPermissionsOf(ctx context.Context, user string) ([]PermissionsInfo, error) {
	if err := requireName("user", user); err != nil {
		return nil, err
	}
	var ps []PermissionsInfo
	err := c.getJSON(ctx, pathOf("users", user, "permissions"), nil, &ps)
	return ps, err
}

func (c *Client) GetPermissions(ctx context.Context, vhost, user string) (PermissionsInfo, error) {
	var p PermissionsInfo
	if err := requireNames("virtual host", vhost, "user", user); err != nil {
		return p, err
	}
	err := c.getJSON(ctx, pathOf("permissions", vhost, user), nil, &p)
	return p, err
}

func (c *Client) DeclarePermissions(ctx context.Context, params PermissionsParams) error {
	if err := requireNames("virtual host", params.VirtualHost, "user", params.User); err != nil {
		return err
	}
	return c.putJSON(ctx, pathOf("permissions", params.VirtualHost, params.User), params)
}

// GrantFullPermissions grants ".*" for configure, write and read.
func (c *Client) GrantFullPermissions(ctx context.Context, user, vhost string) error {
	return c.DeclarePermissions(ctx, PermissionsParams{
		User:        user,
		VirtualHost: vhost,
		Configure:   ".*",
		Write:       ".*",
		Read:        ".*",
	})
}

func (c *Client) ClearPermissions(ctx context.Context, vhost, user string, idempotently bool) error {
	if err := requireNames("virtual host", vhost, "user", user); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("permissions", vhost, user), idempotently)
}

func (c *Client) ListTopicPermissions(ctx context.Context) ([]TopicPermissionsInfo, error) {
	var ps []TopicPermissionsInfo
	err := c.getJSON(ctx, "topic-permissions", nil, &ps)
	return ps, err
}

func (c *Client) ListTopicPermissionsIn(ctx context.Context, vhost string) ([]TopicPermissionsInfo, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	var ps []TopicPermissionsInfo
	err := c.getJSON(ctx, pathOf("vhosts", vhost, "topic-permissions"), nil, &ps)
	return ps, err
}

func (c *Client) DeclareTopicPermissions(ctx context.Context, params TopicPermissionsParams) error {
	if err := requireNames("virtual host", params.VirtualHost, "user", params.User); err != nil {
		return err
	}
	return c.putJSON(ctx, pathOf("topic-permissions", params.VirtualHost, params.User), params)
}

func (c *Client) ClearTopicPermissions(ctx context.Context, vhost, user string, idempotently bool) error {
	if err := requireNames("virtual host", vhost, "user", user); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("topic-permissions", vhost, user), idempotently)
}
