package api

import (
	"context"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

// QueueInfo is a subset of a queue record returned by /api/queues.
type QueueInfo struct {
	Name                   string                 `json:"name"`
	VirtualHost            string                 `json:"vhost"`
	Type                   string                 `json:"type"`
	Durable                bool                   `json:"durable"`
	AutoDelete             bool                   `json:"auto_delete"`
	Exclusive              bool                   `json:"exclusive"`
	Arguments              definitions.XArguments `json:"arguments"`
	Node                   string                 `json:"node,omitempty"`
	State                  string                 `json:"state,omitempty"`
	Leader                 string                 `json:"leader,omitempty"`
	Members                []string               `json:"members,omitempty"`
	Online                 []string               `json:"online,omitempty"`
	Policy                 string                 `json:"policy,omitempty"`
	Consumers              uint64                 `json:"consumers"`
	Messages               uint64                 `json:"messages"`
	MessagesReady          uint64                 `json:"messages_ready"`
	MessagesUnacknowledged uint64                 `json:"messages_unacknowledged"`
	Memory                 uint64                 `json:"memory"`
}

func (q *QueueInfo) OptionalArguments() map[string]any { return q.Arguments }

func (q *QueueInfo) SetOptionalArguments(m map[string]any) { q.Arguments = m }

func (q *QueueInfo) ArgumentKeyPrefix() string { return definitions.XArgumentPrefix }

// QueueType prefers the type reported by the server over the declared argument.
func (q *QueueInfo) QueueType() definitions.QueueType {
	if q.Type != "" {
		return definitions.QueueType(q.Type)
	}
	def := definitions.QueueDefinition{Arguments: q.Arguments}
	return def.QueueType()
}

// QueueParams describes a queue to declare. The queue type is carried in
// the arguments as x-queue-type.
type QueueParams struct {
	Name       string                 `json:"-"`
	Durable    bool                   `json:"durable"`
	AutoDelete bool                   `json:"auto_delete"`
	Exclusive  bool                   `json:"exclusive"`
	Arguments  definitions.XArguments `json:"arguments"`
}

func (p *QueueParams) OptionalArguments() map[string]any { return p.Arguments }

func (p *QueueParams) SetOptionalArguments(m map[string]any) { p.Arguments = m }

func (p *QueueParams) ArgumentKeyPrefix() string { return definitions.XArgumentPrefix }

// NewQueueParams returns durable queue params of the given type. Quorum
// queues and streams are always durable and never exclusive.
func NewQueueParams(name string, qt definitions.QueueType) QueueParams {
	p := QueueParams{Name: name, Durable: true}
	definitions.ArgumentsOf(&p).Insert(definitions.XArgumentPrefix+definitions.QueueTypeKey, string(qt))
	return p
}

func NewClassicQueueParams(name string) QueueParams {
	return NewQueueParams(name, definitions.QueueTypeClassic)
}

func NewQuorumQueueParams(name string) QueueParams {
	return NewQueueParams(name, definitions.QueueTypeQuorum)
}

func NewStreamParams(name string, maxAge string) QueueParams {
	p := NewQueueParams(name, definitions.QueueTypeStream)
	if maxAge != "" {
		definitions.ArgumentsOf(&p).Insert(definitions.XArgumentPrefix+definitions.MaxAgeKey, maxAge)
	}
	return p
}

func (c *Client) ListQueues(ctx context.Context) ([]QueueInfo, error) {
	var qs []QueueInfo
	err := c.getJSON(ctx, "queues", nil, &qs)
	return qs, err
}

func (c *Client) ListQueuesIn(ctx context.Context, vhost string) ([]QueueInfo, error) {
	if err := requireName("virtual host", vhost); err != nil {
		return nil, err
	}
	var qs []QueueInfo
	err := c.getJSON(ctx, pathOf("queues", vhost), nil, &qs)
	return qs, err
}

func (c *Client) GetQueueInfo(ctx context.Context, vhost, name string) (QueueInfo, error) {
	var q QueueInfo
	if err := requireNames("virtual host", vhost, "queue", name); err != nil {
		return q, err
	}
	err := c.getJSON(ctx, pathOf("queues", vhost, name), nil, &q)
	return q, err
}

func (c *Client) DeclareQueue(ctx context.Context, vhost string, params QueueParams) error {
	if err := requireNames("virtual host", vhost, "queue", params.Name); err != nil {
		return err
	}
	return c.putJSON(ctx, pathOf("queues", vhost, params.Name), params)
}

func (c *Client) DeleteQueue(ctx context.Context, vhost, name string, idempotently bool) error {
	if err := requireNames("virtual host", vhost, "queue", name); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("queues", vhost, name), idempotently)
}

// PurgeQueue removes all ready messages from a queue.
func (c *Client) PurgeQueue(ctx context.Context, vhost, name string) error {
	if err := requireNames("virtual host", vhost, "queue", name); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("queues", vhost, name, "contents"), false)
}
