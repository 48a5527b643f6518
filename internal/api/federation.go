package api

import (
	"context"
)

const (
	FederationUpstreamComponent = "federation-upstream"

	DefaultFederationPrefetch       = 1000
	DefaultFederationReconnectDelay = 5
)

// FederationUpstreamParams describe a federation upstream. Queue
// federation uses Queue, exchange federation uses Exchange and MaxHops.
type FederationUpstreamParams struct {
	Name           string
	VirtualHost    string
	URI            string
	PrefetchCount  uint32
	ReconnectDelay uint32
	TrustUserID    bool
	AckMode        AckMode

	Queue       string
	ConsumerTag string

	Exchange   string
	MaxHops    uint8
	Expires    uint32
	MessageTTL uint32
}

// NewFederationUpstreamParams fills in the server defaults for prefetch,
// reconnect delay and acknowledgement mode.
func NewFederationUpstreamParams(vhost, name, uri string) FederationUpstreamParams {
	return FederationUpstreamParams{
		Name:           name,
		VirtualHost:    vhost,
		URI:            uri,
		PrefetchCount:  DefaultFederationPrefetch,
		ReconnectDelay: DefaultFederationReconnectDelay,
		AckMode:        AckModeOnConfirm,
	}
}

func (p FederationUpstreamParams) runtimeParameter() RuntimeParameterParams {
	value := map[string]any{
		"uri":             p.URI,
		"prefetch-count":  p.PrefetchCount,
		"reconnect-delay": p.ReconnectDelay,
		"trust-user-id":   p.TrustUserID,
		"ack-mode":        string(p.AckMode),
	}
	setIfNotEmpty(value, "queue", p.Queue)
	setIfNotEmpty(value, "consumer-tag", p.ConsumerTag)
	setIfNotEmpty(value, "exchange", p.Exchange)
	if p.MaxHops > 0 {
		value["max-hops"] = p.MaxHops
	}
	if p.Expires > 0 {
		value["expires"] = p.Expires
	}
	if p.MessageTTL > 0 {
		value["message-ttl"] = p.MessageTTL
	}
	return RuntimeParameterParams{
		Name:        p.Name,
		VirtualHost: p.VirtualHost,
		Component:   FederationUpstreamComponent,
		Value:       value,
	}
}

func (c *Client) ListFederationUpstreams(ctx context.Context) ([]RuntimeParameterInfo, error) {
	return c.ListRuntimeParametersOfComponent(ctx, FederationUpstreamComponent)
}

func (c *Client) DeclareFederationUpstream(ctx context.Context, params FederationUpstreamParams) error {
	if params.AckMode == "" {
		params.AckMode = AckModeOnConfirm
	}
	return c.UpsertRuntimeParameter(ctx, params.runtimeParameter())
}

func (c *Client) DeleteFederationUpstream(ctx context.Context, vhost, name string, idempotently bool) error {
	return c.ClearRuntimeParameter(ctx, FederationUpstreamComponent, vhost, name, idempotently)
}
