package api

import (
	"context"
)

type ObjectTotals struct {
	Connections uint64 `json:"connections"`
	Channels    uint64 `json:"channels"`
	Queues      uint64 `json:"queues"`
	Exchanges   uint64 `json:"exchanges"`
	Consumers   uint64 `json:"consumers"`
}

type QueueTotals struct {
	Messages               uint64 `json:"messages"`
	MessagesReady          uint64 `json:"messages_ready"`
	MessagesUnacknowledged uint64 `json:"messages_unacknowledged"`
}

// Overview is a subset of GET /api/overview.
type Overview struct {
	ClusterName        string         `json:"cluster_name"`
	Node               string         `json:"node"`
	RabbitMQVersion    string         `json:"rabbitmq_version"`
	ErlangVersion      string         `json:"erlang_version"`
	ErlangFullVersion  string         `json:"erlang_full_version"`
	ProductName        string         `json:"product_name"`
	ProductVersion     string         `json:"product_version"`
	ManagementVersion  string         `json:"management_version"`
	ClusterTags        map[string]any `json:"cluster_tags,omitempty"`
	NodeTags           map[string]any `json:"node_tags,omitempty"`
	ObjectTotals       ObjectTotals   `json:"object_totals"`
	QueueTotals        QueueTotals    `json:"queue_totals"`
	StatisticsDBEvents uint64         `json:"statistics_db_event_queue"`
}

func (c *Client) Overview(ctx context.Context) (Overview, error) {
	var o Overview
	err := c.getJSON(ctx, "overview", nil, &o)
	return o, err
}

// ServerVersion returns the RabbitMQ version of the node the client talks to.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	o, err := c.Overview(ctx)
	if err != nil {
		return "", err
	}
	return o.RabbitMQVersion, nil
}

type NodeInfo struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Running        bool     `json:"running"`
	Uptime         uint64   `json:"uptime"`
	Processors     uint32   `json:"processors"`
	RunQueue       uint32   `json:"run_queue"`
	FDTotal        uint64   `json:"fd_total"`
	ProcTotal      uint64   `json:"proc_total"`
	MemLimit       uint64   `json:"mem_limit"`
	MemAlarm       bool     `json:"mem_alarm"`
	DiskFreeLimit  uint64   `json:"disk_free_limit"`
	DiskFreeAlarm  bool     `json:"disk_free_alarm"`
	RatesMode      string   `json:"rates_mode"`
	EnabledPlugins []string `json:"enabled_plugins"`
	BeingDrained   bool     `json:"being_drained"`
}

func (c *Client) ListNodes(ctx context.Context) ([]NodeInfo, error) {
	var nodes []NodeInfo
	err := c.getJSON(ctx, "nodes", nil, &nodes)
	return nodes, err
}

func (c *Client) GetNode(ctx context.Context, name string) (NodeInfo, error) {
	var n NodeInfo
	if err := requireName("node", name); err != nil {
		return n, err
	}
	err := c.getJSON(ctx, pathOf("nodes", name), nil, &n)
	return n, err
}
