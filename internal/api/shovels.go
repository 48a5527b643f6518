package api

import (
	"context"
)

const ShovelComponent = "shovel"

// AckMode is the acknowledgement mode used by shovels and federation links.
type AckMode string

const (
	AckModeOnConfirm AckMode = "on-confirm"
	AckModeOnPublish AckMode = "on-publish"
	AckModeNoAck     AckMode = "no-ack"
)

// Amqp091ShovelParams describe a dynamic shovel between two AMQP 0-9-1
// endpoints. Exactly one of SourceQueue and SourceExchange should be set,
// and likewise for the destination.
type Amqp091ShovelParams struct {
	Name           string
	VirtualHost    string
	AckMode        AckMode
	ReconnectDelay uint32

	SourceURI                string
	SourceQueue              string
	SourceExchange           string
	SourceExchangeRoutingKey string
	SourcePredeclared        bool

	DestinationURI                string
	DestinationQueue              string
	DestinationExchange           string
	DestinationExchangeRoutingKey string
	DestinationPredeclared        bool
}

func (p Amqp091ShovelParams) runtimeParameter() RuntimeParameterParams {
	ack := p.AckMode
	if ack == "" {
		ack = AckModeOnConfirm
	}
	value := map[string]any{
		"src-protocol":  "amqp091",
		"dest-protocol": "amqp091",
		"src-uri":       p.SourceURI,
		"dest-uri":      p.DestinationURI,
		"ack-mode":      string(ack),
	}
	setIfNotEmpty(value, "src-queue", p.SourceQueue)
	setIfNotEmpty(value, "src-exchange", p.SourceExchange)
	setIfNotEmpty(value, "src-exchange-key", p.SourceExchangeRoutingKey)
	setIfNotEmpty(value, "dest-queue", p.DestinationQueue)
	setIfNotEmpty(value, "dest-exchange", p.DestinationExchange)
	setIfNotEmpty(value, "dest-exchange-key", p.DestinationExchangeRoutingKey)
	if p.SourcePredeclared {
		value["src-predeclared"] = true
	}
	if p.DestinationPredeclared {
		value["dest-predeclared"] = true
	}
	if p.ReconnectDelay > 0 {
		value["reconnect-delay"] = p.ReconnectDelay
	}
	return RuntimeParameterParams{
		Name:        p.Name,
		VirtualHost: p.VirtualHost,
		Component:   ShovelComponent,
		Value:       value,
	}
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// ShovelInfo is a shovel status record from /api/shovels.
type ShovelInfo struct {
	Name        string `json:"name"`
	VirtualHost string `json:"vhost"`
	Type        string `json:"type"`
	State       string `json:"state"`
	Node        string `json:"node"`
	Source      string `json:"src_uri,omitempty"`
	Destination string `json:"dest_uri,omitempty"`
}

func (c *Client) ListShovels(ctx context.Context) ([]ShovelInfo, error) {
	var ss []ShovelInfo
	err := c.getJSON(ctx, "shovels", nil, &ss)
	return ss, err
}

func (c *Client) ListShovelsIn(ctx context.Context, vhost string) ([]ShovelInfo, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	var ss []ShovelInfo
	err := c.getJSON(ctx, pathOf("shovels", vhost), nil, &ss)
	return ss, err
}

func (c *Client) DeclareAMQP091Shovel(ctx context.Context, params Amqp091ShovelParams) error {
	return c.UpsertRuntimeParameter(ctx, params.runtimeParameter())
}

func (c *Client) DeleteShovel(ctx context.Context, vhost, name string, idempotently bool) error {
	return c.ClearRuntimeParameter(ctx, ShovelComponent, vhost, name, idempotently)
}
