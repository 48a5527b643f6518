package api

import (
	"context"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

type VirtualHostInfo struct {
	Name             string                           `json:"name"`
	Description      string                           `json:"description"`
	Tags             definitions.Tags                 `json:"tags"`
	DefaultQueueType string                           `json:"default_queue_type,omitempty"`
	Tracing          bool                             `json:"tracing"`
	Metadata         *definitions.VirtualHostMetadata `json:"metadata,omitempty"`
	ClusterState     map[string]string                `json:"cluster_state,omitempty"`
	Messages         uint64                           `json:"messages"`
}

// VirtualHostParams is the body of PUT /api/vhosts/{name}.
type VirtualHostParams struct {
	Name             string           `json:"-"`
	Description      string           `json:"description,omitempty"`
	Tags             definitions.Tags `json:"tags,omitempty"`
	DefaultQueueType string           `json:"default_queue_type,omitempty"`
	Tracing          bool             `json:"tracing"`
}

func (c *Client) ListVirtualHosts(ctx context.Context) ([]VirtualHostInfo, error) {
	var vhosts []VirtualHostInfo
	err := c.getJSON(ctx, "vhosts", nil, &vhosts)
	return vhosts, err
}

func (c *Client) GetVirtualHost(ctx context.Context, name string) (VirtualHostInfo, error) {
	var vh VirtualHostInfo
	if err := requireName("virtual host", name); err != nil {
		return vh, err
	}
	err := c.getJSON(ctx, pathOf("vhosts", name), nil, &vh)
	return vh, err
}

// CreateVirtualHost creates a virtual host or updates an existing one.
func (c *Client) CreateVirtualHost(ctx context.Context, params VirtualHostParams) error {
	if err := requireName("virtual host", params.Name); err != nil {
		return err
	}
	return c.putJSON(ctx, pathOf("vhosts", params.Name), params)
}

func (c *Client) UpdateVirtualHost(ctx context.Context, params VirtualHostParams) error {
	return c.CreateVirtualHost(ctx, params)
}

func (c *Client) DeleteVirtualHost(ctx context.Context, name string, idempotently bool) error {
	if err := requireName("virtual host", name); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("vhosts", name), idempotently)
}
