package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

type ResourceAlarm struct {
	Node     string `json:"node"`
	Resource string `json:"resource"`
}

type QuorumEndangeredQueue struct {
	Name         string `json:"name"`
	ReadableName string `json:"readable_name"`
	VirtualHost  string `json:"virtual_host"`
	Type         string `json:"type"`
}

// HealthCheckFailureDetails covers the bodies of every failed health
// check. Only the fields of the given check are set. Missing is a port
// number, a protocol name or a list of protocol names.
type HealthCheckFailureDetails struct {
	Status    string                  `json:"status"`
	Reason    string                  `json:"reason"`
	Alarms    []ResourceAlarm         `json:"alarms,omitempty"`
	Queues    []QuorumEndangeredQueue `json:"queues,omitempty"`
	Protocols []string                `json:"protocols,omitempty"`
	Missing   json.RawMessage         `json:"missing,omitempty"`
}

// Protocol names accepted by HealthCheckProtocolListener.
const (
	ProtocolAMQP091    = "amqp"
	ProtocolAMQP10     = "amqp1.0"
	ProtocolMQTT       = "mqtt"
	ProtocolSTOMP      = "stomp"
	ProtocolStream     = "stream"
	ProtocolHTTP       = "http"
	ProtocolPrometheus = "prometheus"
	ProtocolWebMQTT    = "http/web-mqtt"
	ProtocolWebSTOMP   = "http/web-stomp"
	ProtocolAMQP091TLS = "amqp/ssl"
	ProtocolStreamTLS  = "stream/ssl"
	ProtocolMQTTTLS    = "mqtt/ssl"
)

func (c *Client) HealthCheckClusterWideAlarms(ctx context.Context) error {
	return c.healthCheck(ctx, pathOf("health", "checks", "alarms"))
}

func (c *Client) HealthCheckLocalAlarms(ctx context.Context) error {
	return c.healthCheck(ctx, pathOf("health", "checks", "local-alarms"))
}

// HealthCheckIfNodeIsQuorumCritical fails if shutting the node down would
// leave a quorum queue or stream without a quorum of online replicas.
func (c *Client) HealthCheckIfNodeIsQuorumCritical(ctx context.Context) error {
	return c.healthCheck(ctx, pathOf("health", "checks", "node-is-quorum-critical"))
}

func (c *Client) HealthCheckPortListener(ctx context.Context, port uint16) error {
	return c.healthCheck(ctx, pathOf("health", "checks", "port-listener", strconv.Itoa(int(port))))
}

func (c *Client) HealthCheckProtocolListener(ctx context.Context, protocol string) error {
	if err := requireName("protocol", protocol); err != nil {
		return err
	}
	return c.healthCheck(ctx, pathOf("health", "checks", "protocol-listener", protocol))
}

// healthCheck treats a 503 as a failed check rather than a server error.
func (c *Client) healthCheck(ctx context.Context, path string) error {
	resp, err := c.get(ctx, path, nil, http.StatusServiceUnavailable)
	defer ensureReaderClosed(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		return nil
	}

	failure := &HealthCheckFailedError{Path: path, StatusCode: resp.StatusCode}
	if err := decodeJSON(resp, &failure.Details); err != nil {
		return err
	}
	return failure
}
