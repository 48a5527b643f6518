package api

import (
	"context"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

type RuntimeParameterInfo = definitions.RuntimeParameter

type GlobalRuntimeParameterInfo = definitions.GlobalRuntimeParameter

// RuntimeParameterParams is the body of PUT /api/parameters/{component}/{vhost}/{name}.
type RuntimeParameterParams struct {
	Name        string         `json:"name"`
	VirtualHost string         `json:"vhost"`
	Component   string         `json:"component"`
	Value       map[string]any `json:"value"`
}

func (c *Client) ListRuntimeParameters(ctx context.Context) ([]RuntimeParameterInfo, error) {
	var ps []RuntimeParameterInfo
	err := c.getJSON(ctx, "parameters", nil, &ps)
	return ps, err
}

func (c *Client) ListRuntimeParametersOfComponent(ctx context.Context, component string) ([]RuntimeParameterInfo, error) {
	if err := requireName("component", component); err != nil {
		return nil, err
	}
	var ps []RuntimeParameterInfo
	err := c.getJSON(ctx, pathOf("parameters", component), nil, &ps)
	return ps, err
}

func (c *Client) ListRuntimeParametersOfComponentIn(ctx context.Context, component, vhost string) ([]RuntimeParameterInfo, error) {
	if err := requireNames("component", component, "virtual host", vhost); err != nil {
		return nil, err
	}
	var ps []RuntimeParameterInfo
	err := c.getJSON(ctx, pathOf("parameters", component, vhost), nil, &ps)
	return ps, err
}

func (c *Client) GetRuntimeParameter(ctx context.Context, component, vhost, name string) (RuntimeParameterInfo, error) {
	var p RuntimeParameterInfo
	if err := requireNames("component", component, "virtual host", vhost, "parameter", name); err != nil {
		return p, err
	}
	err := c.getJSON(ctx, pathOf("parameters", component, vhost, name), nil, &p)
	return p, err
}

func (c *Client) UpsertRuntimeParameter(ctx context.Context, params RuntimeParameterParams) error {
	if err := requireNames("component", params.Component, "virtual host", params.VirtualHost, "parameter", params.Name); err != nil {
		return err
	}
	return c.putJSON(ctx, pathOf("parameters", params.Component, params.VirtualHost, params.Name), params)
}

func (c *Client) ClearRuntimeParameter(ctx context.Context, component, vhost, name string, idempotently bool) error {
	if err := requireNames("component", component, "virtual host", vhost, "parameter", name); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("parameters", component, vhost, name), idempotently)
}

func (c *Client) ListGlobalRuntimeParameters(ctx context.Context) ([]GlobalRuntimeParameterInfo, error) {
	var ps []GlobalRuntimeParameterInfo
	err := c.getJSON(ctx, "global-parameters", nil, &ps)
	return ps, err
}

func (c *Client) GetGlobalRuntimeParameter(ctx context.Context, name string) (GlobalRuntimeParameterInfo, error) {
	var p GlobalRuntimeParameterInfo
	if err := requireName("parameter", name); err != nil {
		return p, err
	}
	err := c.getJSON(ctx, pathOf("global-parameters", name), nil, &p)
	return p, err
}

func (c *Client) UpsertGlobalRuntimeParameter(ctx context.Context, name string, value any) error {
	if err := requireName("parameter", name); err != nil {
		return err
	}
	return c.putJSON(ctx, pathOf("global-parameters", name), GlobalRuntimeParameterInfo{Name: name, Value: value})
}

func (c *Client) ClearGlobalRuntimeParameter(ctx context.Context, name string, idempotently bool) error {
	if err := requireName("parameter", name); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("global-parameters", name), idempotently)
}
