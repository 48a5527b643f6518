package transformers

import (
	"slices"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

// StripCmqKeysFromPolicies removes classic mirrored queue keys from every
// policy and operator policy definition.
type StripCmqKeysFromPolicies struct{}

func (StripCmqKeysFromPolicies) Transform(defs *definitions.ClusterDefinitionSet) {
	defs.UpdatePolicies(func(p *definitions.Policy) {
		definitions.ArgumentsOf(p).StripCMQKeys()
	})
}

// PrepareForQuorumQueueMigration removes the keys quorum queues do not
// support from policy definitions and queue arguments: mirroring keys,
// queue-mode and an overflow of reject-publish-dlx.
type PrepareForQuorumQueueMigration struct{}

func (PrepareForQuorumQueueMigration) Transform(defs *definitions.ClusterDefinitionSet) {
	defs.UpdatePolicies(func(p *definitions.Policy) {
		definitions.ArgumentsOf(p).StripQuorumQueueIncompatibleKeys()
	})
	defs.UpdateQueues(func(q *definitions.QueueDefinition) {
		definitions.ArgumentsOf(q).StripQuorumQueueIncompatibleKeys()
	})
}

// DropEmptyPolicies removes policies and operator policies with an empty
// definition. Put it after the stripping transformers in a chain.
type DropEmptyPolicies struct{}

func (DropEmptyPolicies) Transform(defs *definitions.ClusterDefinitionSet) {
	isEmpty := func(p definitions.Policy) bool { return p.IsEmpty() }
	defs.Policies = slices.DeleteFunc(defs.Policies, isEmpty)
	defs.OperatorPolicies = slices.DeleteFunc(defs.OperatorPolicies, isEmpty)
}

// SwitchMirroredQueuesToQuorum sets x-queue-type to quorum on the durable,
// non-auto-delete classic queues matched by a policy with mirroring keys.
// Run it before the stripping transformers.
type SwitchMirroredQueuesToQuorum struct{}

func (SwitchMirroredQueuesToQuorum) Transform(defs *definitions.ClusterDefinitionSet) {
	for i := range defs.Policies {
		p := &defs.Policies[i]
		if !p.HasCMQKeys() {
			continue
		}
		for _, q := range defs.QueuesMatching(p) {
			if canSwitchToQuorum(q.QueueType(), q.Durable, q.AutoDelete, q.IsServerNamed()) {
				q.SetQueueType(definitions.QueueTypeQuorum)
			}
		}
	}
}

func canSwitchToQuorum(qt definitions.QueueType, durable, autoDelete, serverNamed bool) bool {
	return qt == definitions.QueueTypeClassic && durable && !autoDelete && !serverNamed
}

type StripCmqKeysFromVhostPolicies struct{}

func (StripCmqKeysFromVhostPolicies) Transform(defs *definitions.VirtualHostDefinitionSet) {
	defs.UpdatePolicies(func(p *definitions.PolicyWithoutVirtualHost) {
		definitions.ArgumentsOf(p).StripCMQKeys()
	})
}

type PrepareForQuorumQueueMigrationVhost struct{}

func (PrepareForQuorumQueueMigrationVhost) Transform(defs *definitions.VirtualHostDefinitionSet) {
	defs.UpdatePolicies(func(p *definitions.PolicyWithoutVirtualHost) {
		definitions.ArgumentsOf(p).StripQuorumQueueIncompatibleKeys()
	})
	defs.UpdateQueues(func(q *definitions.QueueDefinitionWithoutVirtualHost) {
		definitions.ArgumentsOf(q).StripQuorumQueueIncompatibleKeys()
	})
}

type DropEmptyVhostPolicies struct{}

func (DropEmptyVhostPolicies) Transform(defs *definitions.VirtualHostDefinitionSet) {
	defs.Policies = slices.DeleteFunc(defs.Policies, func(p definitions.PolicyWithoutVirtualHost) bool {
		return p.IsEmpty()
	})
}

type SwitchMirroredQueuesToQuorumVhost struct{}

func (SwitchMirroredQueuesToQuorumVhost) Transform(defs *definitions.VirtualHostDefinitionSet) {
	for i := range defs.Policies {
		p := &defs.Policies[i]
		if !p.HasCMQKeys() {
			continue
		}
		for _, q := range defs.QueuesMatching(p) {
			if canSwitchToQuorum(q.QueueType(), q.Durable, q.AutoDelete, q.IsServerNamed()) {
				q.SetQueueType(definitions.QueueTypeQuorum)
			}
		}
	}
}
