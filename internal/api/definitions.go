package api

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/logger"
)

// ExportClusterWideDefinitionsAsString returns the export document as is.
func (c *Client) ExportClusterWideDefinitionsAsString(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "definitions", nil)
	defer ensureReaderClosed(resp)
	if err != nil {
		return "", err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read definitions: %w", err)
	}
	return string(body), nil
}

func (c *Client) ExportClusterWideDefinitions(ctx context.Context) (*definitions.ClusterDefinitionSet, error) {
	resp, err := c.get(ctx, "definitions", nil)
	defer ensureReaderClosed(resp)
	if err != nil {
		return nil, err
	}
	defs, err := definitions.DecodeClusterDefinitionSet(resp.Body)
	if err != nil {
		return nil, err
	}
	logger.Debug("exported definitions", "version", defs.Version(),
		"vhosts", len(defs.VirtualHosts), "queues", len(defs.Queues), "policies", len(defs.Policies))
	return defs, nil
}

// ImportClusterWideDefinitions accepts a *definitions.ClusterDefinitionSet,
// a string, a []byte or anything that encodes to a definitions document.
func (c *Client) ImportClusterWideDefinitions(ctx context.Context, defs any) error {
	body, err := definitionsBody(defs)
	if err != nil {
		return err
	}
	resp, err := c.postRaw(ctx, "definitions", body)
	defer ensureReaderClosed(resp)
	return err
}

func (c *Client) ExportVirtualHostDefinitions(ctx context.Context, vhost string) (*definitions.VirtualHostDefinitionSet, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, pathOf("definitions", vhost), nil)
	defer ensureReaderClosed(resp)
	if err != nil {
		return nil, err
	}
	return definitions.DecodeVirtualHostDefinitionSet(resp.Body)
}

func (c *Client) ExportVirtualHostDefinitionsAsString(ctx context.Context, vhost string) (string, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return "", err
	}
	resp, err := c.get(ctx, pathOf("definitions", vhost), nil)
	defer ensureReaderClosed(resp)
	if err != nil {
		return "", err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read definitions: %w", err)
	}
	return string(body), nil
}

func (c *Client) ImportVirtualHostDefinitions(ctx context.Context, vhost string, defs any) error {
	if err := requireName("virtual host", vhost); err != nil {
		return err
	}
	body, err := definitionsBody(defs)
	if err != nil {
		return err
	}
	resp, err := c.postRaw(ctx, pathOf("definitions", vhost), body)
	defer ensureReaderClosed(resp)
	return err
}

func definitionsBody(defs any) ([]byte, error) {
	switch v := defs.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		var buf bytes.Buffer
		if err := definitions.Encode(&buf, v); err != nil {
			return nil, fmt.Errorf("failed to encode definitions: %w", err)
		}
		return buf.Bytes(), nil
	}
}
