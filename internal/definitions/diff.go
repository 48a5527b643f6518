package definitions

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type Modification[T any] struct {
	Left  T
	Right T
}

// CollectionDiff compares two collections by item identity.
type CollectionDiff[T any] struct {
	OnlyInLeft  []T
	OnlyInRight []T
	Modified    []Modification[T]
}

func (d CollectionDiff[T]) IsEmpty() bool {
	return len(d.OnlyInLeft) == 0 && len(d.OnlyInRight) == 0 && len(d.Modified) == 0
}

// nil and empty maps and slices are equal, "arguments": {} is the same as no arguments
var equalityOpts = cmp.Options{cmpopts.EquateEmpty()}

func diffBy[T any](left, right []T, identity func(*T) string) CollectionDiff[T] {
	var d CollectionDiff[T]
	rightByID := make(map[string]*T, len(right))
	for i := range right {
		rightByID[identity(&right[i])] = &right[i]
	}
	seen := make(map[string]struct{}, len(left))
	for i := range left {
		id := identity(&left[i])
		seen[id] = struct{}{}
		r, ok := rightByID[id]
		switch {
		case !ok:
			d.OnlyInLeft = append(d.OnlyInLeft, left[i])
		case !cmp.Equal(left[i], *r, equalityOpts):
			d.Modified = append(d.Modified, Modification[T]{Left: left[i], Right: *r})
		}
	}
	for i := range right {
		if _, ok := seen[identity(&right[i])]; !ok {
			d.OnlyInRight = append(d.OnlyInRight, right[i])
		}
	}
	return d
}

func key(parts ...string) string {
	return fmt.Sprintf("%q", parts)
}

type ClusterDefinitionSetDiff struct {
	VirtualHosts     CollectionDiff[VirtualHost]
	Users            CollectionDiff[User]
	Permissions      CollectionDiff[Permissions]
	TopicPermissions CollectionDiff[TopicPermissions]
	Parameters       CollectionDiff[RuntimeParameter]
	GlobalParameters CollectionDiff[GlobalRuntimeParameter]
	Policies         CollectionDiff[Policy]
	OperatorPolicies CollectionDiff[Policy]
	Queues           CollectionDiff[QueueDefinition]
	Exchanges        CollectionDiff[ExchangeDefinition]
	Bindings         CollectionDiff[BindingDefinition]
}

func (d ClusterDefinitionSetDiff) IsEmpty() bool {
	return d.VirtualHosts.IsEmpty() &&
		d.Users.IsEmpty() &&
		d.Permissions.IsEmpty() &&
		d.TopicPermissions.IsEmpty() &&
		d.Parameters.IsEmpty() &&
		d.GlobalParameters.IsEmpty() &&
		d.Policies.IsEmpty() &&
		d.OperatorPolicies.IsEmpty() &&
		d.Queues.IsEmpty() &&
		d.Exchanges.IsEmpty() &&
		d.Bindings.IsEmpty()
}

func policyID(p *Policy) string { return key(p.VirtualHost, p.Name) }

// bindings have no name, every field is part of their identity
func bindingID(b *BindingDefinition) string {
	return key(b.VirtualHost, b.Source, string(b.DestinationType), b.Destination, b.RoutingKey, fmt.Sprint(map[string]any(b.Arguments)))
}

// Diff compares two cluster definition sets collection by collection.
func Diff(left, right *ClusterDefinitionSet) ClusterDefinitionSetDiff {
	return ClusterDefinitionSetDiff{
		VirtualHosts: diffBy(left.VirtualHosts, right.VirtualHosts, func(v *VirtualHost) string { return v.Name }),
		Users:        diffBy(left.Users, right.Users, func(u *User) string { return u.Name }),
		Permissions: diffBy(left.Permissions, right.Permissions, func(p *Permissions) string {
			return key(p.User, p.VirtualHost)
		}),
		TopicPermissions: diffBy(left.TopicPermissions, right.TopicPermissions, func(p *TopicPermissions) string {
			return key(p.User, p.VirtualHost, p.Exchange)
		}),
		Parameters: diffBy(left.Parameters, right.Parameters, func(p *RuntimeParameter) string {
			return key(p.Component, p.VirtualHost, p.Name)
		}),
		GlobalParameters: diffBy(left.GlobalParameters, right.GlobalParameters, func(p *GlobalRuntimeParameter) string {
			return p.Name
		}),
		Policies:         diffBy(left.Policies, right.Policies, policyID),
		OperatorPolicies: diffBy(left.OperatorPolicies, right.OperatorPolicies, policyID),
		Queues: diffBy(left.Queues, right.Queues, func(q *QueueDefinition) string {
			return key(q.VirtualHost, q.Name)
		}),
		Exchanges: diffBy(left.Exchanges, right.Exchanges, func(e *ExchangeDefinition) string {
			return key(e.VirtualHost, e.Name)
		}),
		Bindings: diffBy(left.Bindings, right.Bindings, bindingID),
	}
}

type VirtualHostDefinitionSetDiff struct {
	Parameters CollectionDiff[RuntimeParameterWithoutVirtualHost]
	Policies   CollectionDiff[PolicyWithoutVirtualHost]
	Queues     CollectionDiff[QueueDefinitionWithoutVirtualHost]
	Exchanges  CollectionDiff[ExchangeDefinitionWithoutVirtualHost]
	Bindings   CollectionDiff[BindingDefinitionWithoutVirtualHost]
}

func (d VirtualHostDefinitionSetDiff) IsEmpty() bool {
	return d.Parameters.IsEmpty() &&
		d.Policies.IsEmpty() &&
		d.Queues.IsEmpty() &&
		d.Exchanges.IsEmpty() &&
		d.Bindings.IsEmpty()
}

func DiffVirtualHost(left, right *VirtualHostDefinitionSet) VirtualHostDefinitionSetDiff {
	return VirtualHostDefinitionSetDiff{
		Parameters: diffBy(left.Parameters, right.Parameters, func(p *RuntimeParameterWithoutVirtualHost) string {
			return key(p.Component, p.Name)
		}),
		Policies: diffBy(left.Policies, right.Policies, func(p *PolicyWithoutVirtualHost) string { return p.Name }),
		Queues: diffBy(left.Queues, right.Queues, func(q *QueueDefinitionWithoutVirtualHost) string {
			return q.Name
		}),
		Exchanges: diffBy(left.Exchanges, right.Exchanges, func(e *ExchangeDefinitionWithoutVirtualHost) string {
			return e.Name
		}),
		Bindings: diffBy(left.Bindings, right.Bindings, func(b *BindingDefinitionWithoutVirtualHost) string {
			return key(b.Source, string(b.DestinationType), b.Destination, b.RoutingKey, fmt.Sprint(map[string]any(b.Arguments)))
		}),
	}
}
