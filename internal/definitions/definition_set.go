package definitions

import (
	"encoding/json"
)

// ClusterDefinitionSet is a cluster-wide definitions export.
type ClusterDefinitionSet struct {
	ServerVersion    string                   `json:"rabbitmq_version,omitempty"`
	RabbitVersion    string                   `json:"rabbit_version,omitempty"`
	Users            []User                   `json:"users"`
	VirtualHosts     []VirtualHost            `json:"vhosts"`
	Permissions      []Permissions            `json:"permissions"`
	TopicPermissions []TopicPermissions       `json:"topic_permissions"`
	Parameters       []RuntimeParameter       `json:"parameters"`
	GlobalParameters []GlobalRuntimeParameter `json:"global_parameters"`
	Policies         []Policy                 `json:"policies"`
	OperatorPolicies []Policy                 `json:"operator_policies"`
	Queues           []QueueDefinition        `json:"queues"`
	Exchanges        []ExchangeDefinition     `json:"exchanges"`
	Bindings         []BindingDefinition      `json:"bindings"`
}

func (d ClusterDefinitionSet) MarshalJSON() ([]byte, error) {
	type plain ClusterDefinitionSet
	p := plain(d)
	p.Users = nonNil(p.Users)
	p.VirtualHosts = nonNil(p.VirtualHosts)
	p.Permissions = nonNil(p.Permissions)
	p.TopicPermissions = nonNil(p.TopicPermissions)
	p.Parameters = nonNil(p.Parameters)
	p.GlobalParameters = nonNil(p.GlobalParameters)
	p.Policies = nonNil(p.Policies)
	p.OperatorPolicies = nonNil(p.OperatorPolicies)
	p.Queues = nonNil(p.Queues)
	p.Exchanges = nonNil(p.Exchanges)
	p.Bindings = nonNil(p.Bindings)
	return json.Marshal(p)
}

// Version returns the server version the set was exported from, if known.
func (d *ClusterDefinitionSet) Version() string {
	if d.ServerVersion != "" {
		return d.ServerVersion
	}
	return d.RabbitVersion
}

func (d *ClusterDefinitionSet) IsEmpty() bool {
	return len(d.Users) == 0 &&
		len(d.VirtualHosts) == 0 &&
		len(d.Permissions) == 0 &&
		len(d.TopicPermissions) == 0 &&
		len(d.Parameters) == 0 &&
		len(d.GlobalParameters) == 0 &&
		len(d.Policies) == 0 &&
		len(d.OperatorPolicies) == 0 &&
		len(d.Queues) == 0 &&
		len(d.Exchanges) == 0 &&
		len(d.Bindings) == 0
}

func (d *ClusterDefinitionSet) FindPolicy(vhost, name string) (*Policy, bool) {
	return find(d.Policies, func(p *Policy) bool { return p.VirtualHost == vhost && p.Name == name })
}

func (d *ClusterDefinitionSet) FindOperatorPolicy(vhost, name string) (*Policy, bool) {
	return find(d.OperatorPolicies, func(p *Policy) bool { return p.VirtualHost == vhost && p.Name == name })
}

func (d *ClusterDefinitionSet) FindQueue(vhost, name string) (*QueueDefinition, bool) {
	return find(d.Queues, func(q *QueueDefinition) bool { return q.VirtualHost == vhost && q.Name == name })
}

func (d *ClusterDefinitionSet) FindExchange(vhost, name string) (*ExchangeDefinition, bool) {
	return find(d.Exchanges, func(e *ExchangeDefinition) bool { return e.VirtualHost == vhost && e.Name == name })
}

// QueuesMatching returns pointers into d.Queues for every queue the policy matches.
func (d *ClusterDefinitionSet) QueuesMatching(p *Policy) []*QueueDefinition {
	var matched []*QueueDefinition
	for i := range d.Queues {
		if p.DoesMatchObject(&d.Queues[i]) {
			matched = append(matched, &d.Queues[i])
		}
	}
	return matched
}

func (d *ClusterDefinitionSet) ExchangesMatching(p *Policy) []*ExchangeDefinition {
	var matched []*ExchangeDefinition
	for i := range d.Exchanges {
		if p.DoesMatchObject(&d.Exchanges[i]) {
			matched = append(matched, &d.Exchanges[i])
		}
	}
	return matched
}

// UpdatePolicies applies fn to every policy and operator policy in place.
func (d *ClusterDefinitionSet) UpdatePolicies(fn func(p *Policy)) {
	for i := range d.Policies {
		fn(&d.Policies[i])
	}
	for i := range d.OperatorPolicies {
		fn(&d.OperatorPolicies[i])
	}
}

func (d *ClusterDefinitionSet) UpdateQueues(fn func(q *QueueDefinition)) {
	for i := range d.Queues {
		fn(&d.Queues[i])
	}
}

func (d *ClusterDefinitionSet) UpdateQueueTypeOfMatching(p *Policy, qt QueueType) {
	for _, q := range d.QueuesMatching(p) {
		q.SetQueueType(qt)
	}
}

// VirtualHostDefinitionSet is a definitions export scoped to a single
// virtual host. None of its objects carry a vhost field.
type VirtualHostDefinitionSet struct {
	ServerVersion string                                 `json:"rabbitmq_version,omitempty" toml:"rabbitmq_version"`
	RabbitVersion string                                 `json:"rabbit_version,omitempty" toml:"rabbit_version"`
	Metadata      *VirtualHostMetadata                   `json:"metadata,omitempty" toml:"metadata"`
	Parameters    []RuntimeParameterWithoutVirtualHost   `json:"parameters" toml:"parameters"`
	Policies      []PolicyWithoutVirtualHost             `json:"policies" toml:"policies"`
	Queues        []QueueDefinitionWithoutVirtualHost    `json:"queues" toml:"queues"`
	Exchanges     []ExchangeDefinitionWithoutVirtualHost `json:"exchanges" toml:"exchanges"`
	Bindings      []BindingDefinitionWithoutVirtualHost  `json:"bindings" toml:"bindings"`
}

func (d VirtualHostDefinitionSet) MarshalJSON() ([]byte, error) {
	type plain VirtualHostDefinitionSet
	p := plain(d)
	p.Parameters = nonNil(p.Parameters)
	p.Policies = nonNil(p.Policies)
	p.Queues = nonNil(p.Queues)
	p.Exchanges = nonNil(p.Exchanges)
	p.Bindings = nonNil(p.Bindings)
	return json.Marshal(p)
}

func (d *VirtualHostDefinitionSet) Version() string {
	if d.ServerVersion != "" {
		return d.ServerVersion
	}
	return d.RabbitVersion
}

func (d *VirtualHostDefinitionSet) IsEmpty() bool {
	return len(d.Parameters) == 0 &&
		len(d.Policies) == 0 &&
		len(d.Queues) == 0 &&
		len(d.Exchanges) == 0 &&
		len(d.Bindings) == 0
}

func (d *VirtualHostDefinitionSet) FindPolicy(name string) (*PolicyWithoutVirtualHost, bool) {
	return find(d.Policies, func(p *PolicyWithoutVirtualHost) bool { return p.Name == name })
}

func (d *VirtualHostDefinitionSet) FindQueue(name string) (*QueueDefinitionWithoutVirtualHost, bool) {
	return find(d.Queues, func(q *QueueDefinitionWithoutVirtualHost) bool { return q.Name == name })
}

func (d *VirtualHostDefinitionSet) FindExchange(name string) (*ExchangeDefinitionWithoutVirtualHost, bool) {
	return find(d.Exchanges, func(e *ExchangeDefinitionWithoutVirtualHost) bool { return e.Name == name })
}

func (d *VirtualHostDefinitionSet) QueuesMatching(p *PolicyWithoutVirtualHost) []*QueueDefinitionWithoutVirtualHost {
	var matched []*QueueDefinitionWithoutVirtualHost
	for i := range d.Queues {
		q := &d.Queues[i]
		if p.DoesMatchName(q.Name, q.PolicyTarget()) {
			matched = append(matched, q)
		}
	}
	return matched
}

func (d *VirtualHostDefinitionSet) UpdatePolicies(fn func(p *PolicyWithoutVirtualHost)) {
	for i := range d.Policies {
		fn(&d.Policies[i])
	}
}

func (d *VirtualHostDefinitionSet) UpdateQueues(fn func(q *QueueDefinitionWithoutVirtualHost)) {
	for i := range d.Queues {
		fn(&d.Queues[i])
	}
}

func find[T any](items []T, pred func(*T) bool) (*T, bool) {
	for i := range items {
		if pred(&items[i]) {
			return &items[i], true
		}
	}
	return nil, false
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
