package definitions

import (
	"encoding/json"
	"strings"
)

type QueueType string

const (
	QueueTypeClassic QueueType = "classic"
	QueueTypeQuorum  QueueType = "quorum"
	QueueTypeStream  QueueType = "stream"
)

func (qt QueueType) PolicyTarget() PolicyTarget {
	switch qt {
	case QueueTypeQuorum:
		return PolicyTargetQuorumQueues
	case QueueTypeStream:
		return PolicyTargetStreams
	default:
		return PolicyTargetClassicQueues
	}
}

func queueTypeOf(args map[string]any) QueueType {
	if s, ok := args[XArgumentPrefix+QueueTypeKey].(string); ok && s != "" {
		return QueueType(s)
	}
	return QueueTypeClassic
}

// Tags are decoded from either a comma-separated string or a list.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = nil
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			*t = append(*t, tag)
		}
	}
	return nil
}

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

type VirtualHostMetadata struct {
	Description      string `json:"description,omitempty" toml:"description"`
	Tags             Tags   `json:"tags,omitempty" toml:"tags"`
	DefaultQueueType string `json:"default_queue_type,omitempty" toml:"default_queue_type"`
}

type VirtualHost struct {
	Name             string               `json:"name"`
	Description      string               `json:"description,omitempty"`
	Tags             Tags                 `json:"tags,omitempty"`
	DefaultQueueType string               `json:"default_queue_type,omitempty"`
	Metadata         *VirtualHostMetadata `json:"metadata,omitempty"`
}

type User struct {
	Name             string         `json:"name"`
	PasswordHash     string         `json:"password_hash"`
	HashingAlgorithm string         `json:"hashing_algorithm,omitempty"`
	Tags             Tags           `json:"tags"`
	Limits           map[string]any `json:"limits,omitempty"`
}

type Permissions struct {
	User        string `json:"user"`
	VirtualHost string `json:"vhost"`
	Configure   string `json:"configure"`
	Write       string `json:"write"`
	Read        string `json:"read"`
}

type TopicPermissions struct {
	User        string `json:"user"`
	VirtualHost string `json:"vhost"`
	Exchange    string `json:"exchange"`
	Write       string `json:"write"`
	Read        string `json:"read"`
}

type RuntimeParameter struct {
	Name        string         `json:"name"`
	VirtualHost string         `json:"vhost"`
	Component   string         `json:"component"`
	Value       map[string]any `json:"value"`
}

type RuntimeParameterWithoutVirtualHost struct {
	Name      string         `json:"name" toml:"name"`
	Component string         `json:"component" toml:"component"`
	Value     map[string]any `json:"value" toml:"value"`
}

// GlobalRuntimeParameter values are not always objects, cluster_name is a string.
type GlobalRuntimeParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type QueueDefinition struct {
	Name        string     `json:"name"`
	VirtualHost string     `json:"vhost"`
	Durable     bool       `json:"durable"`
	AutoDelete  bool       `json:"auto_delete"`
	Arguments   XArguments `json:"arguments"`
}

func (q *QueueDefinition) OptionalArguments() map[string]any { return q.Arguments }
func (q *QueueDefinition) SetOptionalArguments(m map[string]any) { q.Arguments = m }
func (q *QueueDefinition) ArgumentKeyPrefix() string { return XArgumentPrefix }
func (q *QueueDefinition) ObjectName() string { return q.Name }
func (q *QueueDefinition) ObjectVirtualHost() string { return q.VirtualHost }
func (q *QueueDefinition) PolicyTarget() PolicyTarget { return q.QueueType().PolicyTarget() }
func (q *QueueDefinition) QueueType() QueueType { return queueTypeOf(q.Arguments) }
func (q *QueueDefinition) IsServerNamed() bool { return IsServerNamed(q.Name) }
func (q *QueueDefinition) DoesMatch(p *Policy) bool { return p.DoesMatchObject(q) }
func (q *QueueDefinition) SetQueueType(qt QueueType) { ArgumentsOf(q).Insert(XArgumentPrefix+QueueTypeKey, string(qt)) }
func (q *QueueDefinition) HasQueueTTL() bool { return ArgumentsOf(q).HasQueueTTL() }
func (q *QueueDefinition) HasQuorumQueueIncompatibleArguments() bool {
	return ArgumentsOf(q).HasQuorumQueueIncompatibleKeys()
}

type QueueDefinitionWithoutVirtualHost struct {
	Name       string     `json:"name" toml:"name"`
	Durable    bool       `json:"durable" toml:"durable"`
	AutoDelete bool       `json:"auto_delete" toml:"auto_delete"`
	Arguments  XArguments `json:"arguments" toml:"arguments"`
}

func (q *QueueDefinitionWithoutVirtualHost) OptionalArguments() map[string]any { return q.Arguments }

func (q *QueueDefinitionWithoutVirtualHost) SetOptionalArguments(m map[string]any) {
	q.Arguments = m
}

func (q *QueueDefinitionWithoutVirtualHost) ArgumentKeyPrefix() string { return XArgumentPrefix }

func (q *QueueDefinitionWithoutVirtualHost) QueueType() QueueType { return queueTypeOf(q.Arguments) }

func (q *QueueDefinitionWithoutVirtualHost) PolicyTarget() PolicyTarget {
	return q.QueueType().PolicyTarget()
}

func (q *QueueDefinitionWithoutVirtualHost) SetQueueType(qt QueueType) {
	ArgumentsOf(q).Insert(XArgumentPrefix+QueueTypeKey, string(qt))
}

func (q *QueueDefinitionWithoutVirtualHost) IsServerNamed() bool { return IsServerNamed(q.Name) }

type ExchangeDefinition struct {
	Name        string     `json:"name"`
	VirtualHost string     `json:"vhost"`
	Type        string     `json:"type"`
	Durable     bool       `json:"durable"`
	AutoDelete  bool       `json:"auto_delete"`
	Internal    bool       `json:"internal"`
	Arguments   XArguments `json:"arguments"`
}

func (e *ExchangeDefinition) OptionalArguments() map[string]any { return e.Arguments }
func (e *ExchangeDefinition) SetOptionalArguments(m map[string]any) { e.Arguments = m }
func (e *ExchangeDefinition) ArgumentKeyPrefix() string { return XArgumentPrefix }
func (e *ExchangeDefinition) ObjectName() string { return e.Name }
func (e *ExchangeDefinition) ObjectVirtualHost() string { return e.VirtualHost }
func (e *ExchangeDefinition) PolicyTarget() PolicyTarget { return PolicyTargetExchanges }
func (e *ExchangeDefinition) IsServerNamed() bool { return IsServerNamed(e.Name) }

type ExchangeDefinitionWithoutVirtualHost struct {
	Name       string     `json:"name" toml:"name"`
	Type       string     `json:"type" toml:"type"`
	Durable    bool       `json:"durable" toml:"durable"`
	AutoDelete bool       `json:"auto_delete" toml:"auto_delete"`
	Internal   bool       `json:"internal" toml:"internal"`
	Arguments  XArguments `json:"arguments" toml:"arguments"`
}

func (e *ExchangeDefinitionWithoutVirtualHost) IsServerNamed() bool { return IsServerNamed(e.Name) }

type BindingDestinationType string

const (
	BindingDestinationQueue    BindingDestinationType = "queue"
	BindingDestinationExchange BindingDestinationType = "exchange"
)

// PathAbbreviation is the destination segment used by binding endpoints.
func (t BindingDestinationType) PathAbbreviation() string {
	if t == BindingDestinationExchange {
		return "e"
	}
	return "q"
}

type BindingDefinition struct {
	VirtualHost     string                 `json:"vhost"`
	Source          string                 `json:"source"`
	Destination     string                 `json:"destination"`
	DestinationType BindingDestinationType `json:"destination_type"`
	RoutingKey      string                 `json:"routing_key"`
	Arguments       XArguments             `json:"arguments"`
}

type BindingDefinitionWithoutVirtualHost struct {
	Source          string                 `json:"source" toml:"source"`
	Destination     string                 `json:"destination" toml:"destination"`
	DestinationType BindingDestinationType `json:"destination_type" toml:"destination_type"`
	RoutingKey      string                 `json:"routing_key" toml:"routing_key"`
	Arguments       XArguments             `json:"arguments" toml:"arguments"`
}
