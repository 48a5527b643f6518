package api

import (
	"context"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

// PolicyInfo is a policy or operator policy as returned by the API.
type PolicyInfo = definitions.Policy

// PolicyParams is the body of PUT /api/policies/{vhost}/{name}. Definition
// keys are not prefixed with "x-".
type PolicyParams struct {
	VirtualHost string                       `json:"vhost"`
	Name        string                       `json:"name"`
	Pattern     string                       `json:"pattern"`
	ApplyTo     definitions.PolicyTarget     `json:"apply-to"`
	Priority    int                          `json:"priority"`
	Definition  definitions.PolicyDefinition `json:"definition"`
}

func (p *PolicyParams) OptionalArguments() map[string]any { return p.Definition }

func (p *PolicyParams) SetOptionalArguments(m map[string]any) { p.Definition = m }

func (p *PolicyParams) ArgumentKeyPrefix() string { return "" }

const (
	policiesPath         = "policies"
	operatorPoliciesPath = "operator-policies"
)

func (c *Client) ListPolicies(ctx context.Context) ([]PolicyInfo, error) {
	return c.listPolicies(ctx, policiesPath, "")
}

func (c *Client) ListPoliciesIn(ctx context.Context, vhost string) ([]PolicyInfo, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	return c.listPolicies(ctx, policiesPath, vhost)
}

func (c *Client) GetPolicy(ctx context.Context, vhost, name string) (PolicyInfo, error) {
	return c.getPolicy(ctx, policiesPath, vhost, name)
}

func (c *Client) DeclarePolicy(ctx context.Context, params PolicyParams) error {
	return c.declarePolicy(ctx, policiesPath, params)
}

func (c *Client) DeletePolicy(ctx context.Context, vhost, name string, idempotently bool) error {
	return c.deletePolicy(ctx, policiesPath, vhost, name, idempotently)
}

func (c *Client) ListOperatorPolicies(ctx context.Context) ([]PolicyInfo, error) {
	return c.listPolicies(ctx, operatorPoliciesPath, "")
}

func (c *Client) ListOperatorPoliciesIn(ctx context.Context, vhost string) ([]PolicyInfo, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	return c.listPolicies(ctx, operatorPoliciesPath, vhost)
}

func (c *Client) GetOperatorPolicy(ctx context.Context, vhost, name string) (PolicyInfo, error) {
	return c.getPolicy(ctx, operatorPoliciesPath, vhost, name)
}

func (c *Client) DeclareOperatorPolicy(ctx context.Context, params PolicyParams) error {
	return c.declarePolicy(ctx, operatorPoliciesPath, params)
}

func (c *Client) DeleteOperatorPolicy(ctx context.Context, vhost, name string, idempotently bool) error {
	return c.deletePolicy(ctx, operatorPoliciesPath, vhost, name, idempotently)
}

func (c *Client) listPolicies(ctx context.Context, kind, vhost string) ([]PolicyInfo, error) {
	path := kind
	if vhost != "" {
		path = pathOf(kind, vhost)
	}
	var ps []PolicyInfo
	err := c.getJSON(ctx, path, nil, &ps)
	return ps, err
}

func (c *Client) getPolicy(ctx context.Context, kind, vhost, name string) (PolicyInfo, error) {
	var p PolicyInfo
	if err := requireNames("virtual host", vhost, "policy", name); err != nil {
		return p, err
	}
	err := c.getJSON(ctx, pathOf(kind, vhost, name), nil, &p)
	return p, err
}

func (c *Client) declarePolicy(ctx context.Context, kind string, params PolicyParams) error {
	if err := requireNames("virtual host", params.VirtualHost, "policy", params.Name); err != nil {
		return err
	}
	if params.ApplyTo == "" {
		params.ApplyTo = definitions.PolicyTargetAll
	}
	return c.putJSON(ctx, pathOf(kind, params.VirtualHost, params.Name), params)
}

func (c *Client) deletePolicy(ctx context.Context, kind, vhost, name string, idempotently bool) error {
	if err := requireNames("virtual host", vhost, "policy", name); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf(kind, vhost, name), idempotently)
}
