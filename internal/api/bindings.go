package api

import (
	"context"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

type BindingInfo struct {
	VirtualHost     string                             `json:"vhost"`
	Source          string                             `json:"source"`
	Destination     string                             `json:"destination"`
	DestinationType definitions.BindingDestinationType `json:"destination_type"`
	RoutingKey      string                             `json:"routing_key"`
	Arguments       definitions.XArguments             `json:"arguments"`
	PropertiesKey   string                             `json:"properties_key,omitempty"`
}

// BindingDeletionParams identify the binding to delete. A binding is
// matched on source, routing key and arguments among the bindings of
// the destination.
type BindingDeletionParams struct {
	VirtualHost     string
	Source          string
	Destination     string
	DestinationType definitions.BindingDestinationType
	RoutingKey      string
	Arguments       definitions.XArguments
}

type bindingParams struct {
	RoutingKey string                 `json:"routing_key"`
	Arguments  definitions.XArguments `json:"arguments"`
}

func (c *Client) ListBindings(ctx context.Context) ([]BindingInfo, error) {
	var bs []BindingInfo
	err := c.getJSON(ctx, "bindings", nil, &bs)
	return bs, err
}

func (c *Client) ListBindingsIn(ctx context.Context, vhost string) ([]BindingInfo, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	var bs []BindingInfo
	err := c.getJSON(ctx, pathOf("bindings", vhost), nil, &bs)
	return bs, err
}

func (c *Client) ListQueueBindings(ctx context.Context, vhost, queue string) ([]BindingInfo, error) {
	if err := requireNames("virtual host", vhost, "queue", queue); err != nil {
		return nil, err
	}
	var bs []BindingInfo
	err := c.getJSON(ctx, pathOf("queues", vhost, queue, "bindings"), nil, &bs)
	return bs, err
}

// ListExchangeBindingsWithDestination lists bindings where the exchange is the destination.
func (c *Client) ListExchangeBindingsWithDestination(ctx context.Context, vhost, exchange string) ([]BindingInfo, error) {
	if err := requireNames("virtual host", vhost, "exchange", exchange); err != nil {
		return nil, err
	}
	var bs []BindingInfo
	err := c.getJSON(ctx, pathOf("exchanges", vhost, exchange, "bindings", "destination"), nil, &bs)
	return bs, err
}

// BindQueue binds a queue to an exchange.
func (c *Client) BindQueue(ctx context.Context, vhost, queue, exchange, routingKey string, args definitions.XArguments) error {
	if err := requireNames("virtual host", vhost, "queue", queue, "exchange", exchange); err != nil {
		return err
	}
	return c.postJSON(ctx, pathOf("bindings", vhost, "e", exchange, "q", queue),
		bindingParams{RoutingKey: routingKey, Arguments: args})
}

// BindExchange binds destination to source.
func (c *Client) BindExchange(ctx context.Context, vhost, destination, source, routingKey string, args definitions.XArguments) error {
	if err := requireNames("virtual host", vhost, "exchange", destination, "exchange", source); err != nil {
		return err
	}
	return c.postJSON(ctx, pathOf("bindings", vhost, "e", source, "e", destination),
		bindingParams{RoutingKey: routingKey, Arguments: args})
}

// DeleteBinding looks up the binding to find its properties key and
// deletes it. No match is ErrNotFound unless idempotently is set, several
// matches are ErrMultipleMatchingBindings.
func (c *Client) DeleteBinding(ctx context.Context, params BindingDeletionParams, idempotently bool) error {
	if err := requireNames("virtual host", params.VirtualHost, "binding source", params.Source, "binding destination", params.Destination); err != nil {
		return err
	}

	var (
		candidates []BindingInfo
		err        error
	)
	if params.DestinationType == definitions.BindingDestinationExchange {
		candidates, err = c.ListExchangeBindingsWithDestination(ctx, params.VirtualHost, params.Destination)
	} else {
		candidates, err = c.ListQueueBindings(ctx, params.VirtualHost, params.Destination)
	}
	if err != nil {
		return err
	}

	var matched []BindingInfo
	for _, b := range candidates {
		if b.Source == params.Source &&
			b.RoutingKey == params.RoutingKey &&
			cmp.Equal(map[string]any(b.Arguments), map[string]any(params.Arguments), cmpopts.EquateEmpty()) {
			matched = append(matched, b)
		}
	}

	switch len(matched) {
	case 0:
		if idempotently {
			return nil
		}
		return ErrNotFound
	case 1:
		segments := []string{
			"bindings", params.VirtualHost, "e", params.Source,
			params.DestinationType.PathAbbreviation(), params.Destination,
		}
		if pk := matched[0].PropertiesKey; pk != "" {
			segments = append(segments, pk)
		}
		return c.deleteResource(ctx, pathOf(segments...), idempotently)
	default:
		return ErrMultipleMatchingBindings
	}
}
