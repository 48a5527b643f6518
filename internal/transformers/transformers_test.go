package transformers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

func loadClusterFixture(t *testing.T, name string) *definitions.ClusterDefinitionSet {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	defs, err := definitions.ParseClusterDefinitionSet(data)
	require.NoError(t, err)
	return defs
}

func loadVirtualHostFixture(t *testing.T, name string) *definitions.VirtualHostDefinitionSet {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	defs, err := definitions.ParseVirtualHostDefinitionSet(data)
	require.NoError(t, err)
	return defs
}

// sampleDefinitionSet returns a fresh set touching every collection.
func sampleDefinitionSet() *definitions.ClusterDefinitionSet {
	return &definitions.ClusterDefinitionSet{
		ServerVersion: "3.13.7",
		Users: []definitions.User{
			{Name: "alice", PasswordHash: "hash-a", Tags: definitions.Tags{"administrator"}},
			{Name: "bob", PasswordHash: "hash-b"},
		},
		VirtualHosts: []definitions.VirtualHost{{Name: "/"}, {Name: "events"}},
		Permissions: []definitions.Permissions{
			{User: "alice", VirtualHost: "/", Configure: ".*", Write: ".*", Read: ".*"},
			{User: "bob", VirtualHost: "events", Configure: "", Write: ".*", Read: ".*"},
		},
		TopicPermissions: []definitions.TopicPermissions{
			{User: "bob", VirtualHost: "events", Exchange: "amq.topic", Write: ".*", Read: ".*"},
		},
		Parameters: []definitions.RuntimeParameter{
			{Name: "upstream-1", VirtualHost: "events", Component: "federation-upstream", Value: map[string]any{"uri": "amqp://remote"}},
		},
		GlobalParameters: []definitions.GlobalRuntimeParameter{
			{Name: "cluster_name", Value: "rabbit@eu-1"},
		},
		Policies: []definitions.Policy{
			{
				VirtualHost: "events", Name: "ha-only", Pattern: "^ha\\.", ApplyTo: definitions.PolicyTargetQueues,
				Definition: definitions.PolicyDefinition{"ha-mode": "all", "ha-sync-mode": "automatic"},
			},
			{
				VirtualHost: "events", Name: "mixed", Pattern: "^mixed\\.", ApplyTo: definitions.PolicyTargetAll, Priority: 5,
				Definition: definitions.PolicyDefinition{
					"ha-mode": "exactly", "ha-params": 2, "max-length": 1000,
					"queue-mode": "lazy", "overflow": "reject-publish-dlx",
				},
			},
			{
				VirtualHost: "/", Name: "limits", Pattern: ".*", ApplyTo: definitions.PolicyTargetQueues,
				Definition: definitions.PolicyDefinition{"max-length-bytes": 1 << 20, "overflow": "drop-head"},
			},
		},
		OperatorPolicies: []definitions.Policy{
			{
				VirtualHost: "/", Name: "op", Pattern: ".*", ApplyTo: definitions.PolicyTargetQueues,
				Definition: definitions.PolicyDefinition{"ha-mode": "all"},
			},
		},
		Queues: []definitions.QueueDefinition{
			{Name: "ha.1", VirtualHost: "events", Durable: true, Arguments: definitions.XArguments{"x-queue-type": "classic"}},
			{Name: "mixed.1", VirtualHost: "events", Durable: true, Arguments: definitions.XArguments{
				"x-queue-mode": "lazy", "x-max-length": 500, "x-ha-mode": "all", "x-overflow": "reject-publish-dlx",
			}},
			{Name: "plain", VirtualHost: "/", Durable: true, Arguments: definitions.XArguments{"x-overflow": "reject-publish"}},
		},
		Exchanges: []definitions.ExchangeDefinition{
			{Name: "events.topic", VirtualHost: "events", Type: "topic", Durable: true},
		},
		Bindings: []definitions.BindingDefinition{
			{
				VirtualHost: "events", Source: "events.topic", Destination: "ha.1",
				DestinationType: definitions.BindingDestinationQueue, RoutingKey: "#",
			},
		},
	}
}

func builtinTransformers() map[string]DefinitionSetTransformer {
	return map[string]DefinitionSetTransformer{
		"StripCmqKeysFromPolicies":       StripCmqKeysFromPolicies{},
		"PrepareForQuorumQueueMigration": PrepareForQuorumQueueMigration{},
		"DropEmptyPolicies":              DropEmptyPolicies{},
		"ExcludeUsers":                   ExcludeUsers{},
		"ExcludePermissions":             ExcludePermissions{},
		"ExcludeRuntimeParameters":       ExcludeRuntimeParameters{},
		"ExcludeGlobalRuntimeParameters": ExcludeGlobalRuntimeParameters{},
		"ExcludePolicies":                ExcludePolicies{},
		"ObfuscateUsernames":             ObfuscateUsernames{},
		"SwitchMirroredQueuesToQuorum":   SwitchMirroredQueuesToQuorum{},
	}
}

func TestTransformersAreIdempotent(t *testing.T) {
	for name, tr := range builtinTransformers() {
		t.Run(name, func(t *testing.T) {
			once := sampleDefinitionSet()
			tr.Transform(once)

			twice := sampleDefinitionSet()
			tr.Transform(twice)
			tr.Transform(twice)

			assert.Equal(t, once, twice)
		})
	}
}

func TestStrippingIsSubtractive(t *testing.T) {
	for _, tr := range []DefinitionSetTransformer{StripCmqKeysFromPolicies{}, PrepareForQuorumQueueMigration{}} {
		before := sampleDefinitionSet()
		after := sampleDefinitionSet()
		tr.Transform(after)

		require.Len(t, after.Policies, len(before.Policies))
		for i, p := range after.Policies {
			original := before.Policies[i].Definition
			assert.LessOrEqual(t, len(p.Definition), len(original))
			for k, v := range p.Definition {
				assert.Contains(t, original, k)
				assert.Equal(t, original[k], v)
			}
		}
	}
}

func TestStripCmqKeysFromPolicies(t *testing.T) {
	defs := sampleDefinitionSet()
	StripCmqKeysFromPolicies{}.Transform(defs)

	p, ok := defs.FindPolicy("events", "mixed")
	require.True(t, ok)
	assert.Equal(t, definitions.PolicyDefinition{
		"max-length": 1000, "queue-mode": "lazy", "overflow": "reject-publish-dlx",
	}, p.Definition)

	ha, ok := defs.FindPolicy("events", "ha-only")
	require.True(t, ok)
	assert.Empty(t, ha.Definition)

	op, ok := defs.FindOperatorPolicy("/", "op")
	require.True(t, ok)
	assert.Empty(t, op.Definition)

	// queue arguments are left alone
	q, ok := defs.FindQueue("events", "mixed.1")
	require.True(t, ok)
	assert.Contains(t, q.Arguments, "x-ha-mode")
}

func TestStripCmqKeysFromPoliciesWithFixture(t *testing.T) {
	defs := loadClusterFixture(t, "cluster_with_cmq_policies.json")

	p0, ok := defs.FindPolicy("has_cmq_policies", "cmq_group1")
	require.True(t, ok)
	assert.Len(t, p0.Definition, 4)
	assert.True(t, p0.HasCMQKeys())

	NewTransformationChain(StripCmqKeysFromPolicies{}).Apply(defs)

	p1, ok := defs.FindPolicy("has_cmq_policies", "cmq_group1")
	require.True(t, ok)
	assert.Len(t, p1.Definition, 1)
	assert.False(t, p1.HasCMQKeys())
	assert.Contains(t, p1.Definition, "queue-version")

	streams, ok := defs.FindPolicy("has_cmq_policies", "streams")
	require.True(t, ok)
	assert.Equal(t, definitions.PolicyDefinition{"max-age": "1D"}, streams.Definition)
}

func TestLegacyStripCmqPoliciesSwitchesMatchedQueuesToQuorum(t *testing.T) {
	defs := loadClusterFixture(t, "cluster_with_cmq_policies.json")

	chain, err := NewTransformationChainFromNames([]string{"strip_cmq_policies"})
	require.NoError(t, err)
	assert.Equal(t, 2, chain.Len())
	chain.Apply(defs)

	for _, name := range []string{"group1.cq.1", "group1.cq.2", "group2.cq.1", "group2.cq.2", "group3.cq.1", "group3.cq.2"} {
		q, ok := defs.FindQueue("has_cmq_policies", name)
		require.True(t, ok, name)
		assert.Equal(t, definitions.QueueTypeQuorum, q.QueueType(), name)
	}

	s, ok := defs.FindQueue("has_cmq_policies", "streams.s1")
	require.True(t, ok)
	assert.Equal(t, definitions.QueueTypeStream, s.QueueType())

	for _, p := range defs.Policies {
		assert.False(t, p.HasCMQKeys(), p.Name)
	}
}

func TestSwitchMirroredQueuesToQuorumSkipsTransientQueues(t *testing.T) {
	defs := &definitions.ClusterDefinitionSet{
		Policies: []definitions.Policy{{
			VirtualHost: "/", Name: "ha", Pattern: ".*", ApplyTo: definitions.PolicyTargetAll,
			Definition: definitions.PolicyDefinition{"ha-mode": "all"},
		}},
		Queues: []definitions.QueueDefinition{
			{Name: "durable", VirtualHost: "/", Durable: true},
			{Name: "transient", VirtualHost: "/", Durable: false},
			{Name: "auto-deleted", VirtualHost: "/", Durable: true, AutoDelete: true},
			{Name: "amq.gen-abc", VirtualHost: "/", Durable: true},
			{Name: "elsewhere", VirtualHost: "other", Durable: true},
		},
	}
	SwitchMirroredQueuesToQuorum{}.Transform(defs)

	assert.Equal(t, definitions.QueueTypeQuorum, defs.Queues[0].QueueType())
	for _, q := range defs.Queues[1:] {
		assert.Equal(t, definitions.QueueTypeClassic, q.QueueType(), q.Name)
		assert.NotContains(t, q.Arguments, "x-queue-type", q.Name)
	}
}

func TestDropEmptyPoliciesDependsOnOrder(t *testing.T) {
	haOnly := func() *definitions.ClusterDefinitionSet {
		return &definitions.ClusterDefinitionSet{
			Policies: []definitions.Policy{{
				VirtualHost: "/", Name: "ha-policy", Pattern: ".*", ApplyTo: definitions.PolicyTargetQueues,
				Definition: definitions.PolicyDefinition{"ha-mode": "all"},
			}},
		}
	}

	stripped := NewTransformationChain(StripCmqKeysFromPolicies{}, DropEmptyPolicies{}).Apply(haOnly())
	assert.Empty(t, stripped.Policies)

	reversed := NewTransformationChain(DropEmptyPolicies{}, StripCmqKeysFromPolicies{}).Apply(haOnly())
	require.Len(t, reversed.Policies, 1)
	assert.Empty(t, reversed.Policies[0].Definition)
}

func TestDropEmptyPoliciesKeepsNonEmpty(t *testing.T) {
	defs := sampleDefinitionSet()
	NewTransformationChain(StripCmqKeysFromPolicies{}, DropEmptyPolicies{}).Apply(defs)

	var names []string
	for _, p := range defs.Policies {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"mixed", "limits"}, names)
	assert.Empty(t, defs.OperatorPolicies)
}

func TestExclusionsOnlyTouchTheirCollections(t *testing.T) {
	original := sampleDefinitionSet()
	applied := func(tr DefinitionSetTransformer) *definitions.ClusterDefinitionSet {
		return NewTransformationChain(tr).Apply(sampleDefinitionSet())
	}

	defs := applied(ExcludeUsers{})
	assert.Empty(t, defs.Users)
	assert.Equal(t, original.Permissions, defs.Permissions)
	assert.Equal(t, original.Policies, defs.Policies)
	assert.Equal(t, original.Queues, defs.Queues)

	defs = applied(ExcludePermissions{})
	assert.Empty(t, defs.Permissions)
	assert.Empty(t, defs.TopicPermissions)
	assert.Equal(t, original.Users, defs.Users)
	assert.Equal(t, original.Bindings, defs.Bindings)

	defs = applied(ExcludePolicies{})
	assert.Empty(t, defs.Policies)
	assert.Empty(t, defs.OperatorPolicies)
	assert.Equal(t, original.Parameters, defs.Parameters)
	assert.Equal(t, original.Exchanges, defs.Exchanges)

	defs = applied(ExcludeGlobalRuntimeParameters{})
	assert.Empty(t, defs.GlobalParameters)
	assert.Equal(t, original.Parameters, defs.Parameters)
}

func TestExcludeRuntimeParametersKeepsGlobalParameters(t *testing.T) {
	original := sampleDefinitionSet()
	defs := sampleDefinitionSet()
	ExcludeRuntimeParameters{}.Transform(defs)

	assert.Empty(t, defs.Parameters)
	assert.Equal(t, original.GlobalParameters, defs.GlobalParameters)
	assert.Len(t, defs.GlobalParameters, 1)
}

func TestPrepareForQuorumQueueMigrationKeepsOtherPolicyKeys(t *testing.T) {
	defs := &definitions.ClusterDefinitionSet{
		Policies: []definitions.Policy{{
			VirtualHost: "/", Name: "ha-policy", Pattern: ".*", ApplyTo: definitions.PolicyTargetQueues,
			Definition: definitions.PolicyDefinition{"ha-mode": "all", "max-length": 1000},
		}},
	}
	NewTransformationChain(PrepareForQuorumQueueMigration{}, DropEmptyPolicies{}).Apply(defs)

	require.Len(t, defs.Policies, 1)
	assert.Equal(t, "ha-policy", defs.Policies[0].Name)
	assert.Equal(t, definitions.PolicyDefinition{"max-length": 1000}, defs.Policies[0].Definition)
}

func TestPrepareForQuorumQueueMigrationStripsQueueArguments(t *testing.T) {
	defs := &definitions.ClusterDefinitionSet{
		Queues: []definitions.QueueDefinition{{
			Name: "q", VirtualHost: "/", Durable: true,
			Arguments: definitions.XArguments{"x-queue-mode": "lazy", "x-max-length": 500},
		}},
	}
	PrepareForQuorumQueueMigration{}.Transform(defs)

	assert.Equal(t, definitions.XArguments{"x-max-length": 500}, defs.Queues[0].Arguments)
}

func TestPrepareForQuorumQueueMigrationOverflow(t *testing.T) {
	defs := sampleDefinitionSet()
	q, _ := defs.FindQueue("events", "mixed.1")
	q.Arguments["x-max-priority"] = 10
	PrepareForQuorumQueueMigration{}.Transform(defs)

	mixed, _ := defs.FindPolicy("events", "mixed")
	assert.Equal(t, definitions.PolicyDefinition{"max-length": 1000}, mixed.Definition)

	// drop-head is fine for quorum queues
	limits, _ := defs.FindPolicy("/", "limits")
	assert.Equal(t, "drop-head", limits.Definition["overflow"])

	q, _ = defs.FindQueue("events", "mixed.1")
	assert.Equal(t, definitions.XArguments{"x-max-length": 500}, q.Arguments)

	plain, _ := defs.FindQueue("/", "plain")
	assert.Equal(t, "reject-publish", plain.Arguments["x-overflow"])
}

func TestObfuscateUsernames(t *testing.T) {
	defs := &definitions.ClusterDefinitionSet{
		Users:       []definitions.User{{Name: "alice", PasswordHash: "secret"}},
		Permissions: []definitions.Permissions{{User: "alice", VirtualHost: "/", Configure: ".*", Write: ".*", Read: ".*"}},
	}
	ObfuscateUsernames{}.Transform(defs)

	placeholder := defs.Users[0].Name
	assert.NotEqual(t, "alice", placeholder)
	assert.Equal(t, ObfuscatedUsername("alice"), placeholder)
	assert.Equal(t, placeholder, defs.Permissions[0].User)
	assert.Equal(t, ObfuscatedPasswordHash, defs.Users[0].PasswordHash)
}

func TestObfuscateUsernamesIsConsistentAcrossCollections(t *testing.T) {
	defs := sampleDefinitionSet()
	ObfuscateUsernames{}.Transform(defs)

	users := map[string]bool{}
	for _, u := range defs.Users {
		users[u.Name] = true
	}
	require.Len(t, users, 2)
	for _, p := range defs.Permissions {
		assert.True(t, users[p.User], p.User)
	}
	for _, p := range defs.TopicPermissions {
		assert.True(t, users[p.User], p.User)
	}
	assert.NotEqual(t, defs.Users[0].Name, defs.Users[1].Name)
}

func TestEmptyDefinitionSetIsUnchanged(t *testing.T) {
	chain, err := NewTransformationChainFromNames(Names())
	require.NoError(t, err)

	defs := chain.Apply(&definitions.ClusterDefinitionSet{})
	assert.True(t, defs.IsEmpty())
	assert.Equal(t, &definitions.ClusterDefinitionSet{}, defs)

	vchain, err := NewVirtualHostTransformationChainFromNames(VirtualHostNames())
	require.NoError(t, err)
	vdefs := vchain.Apply(&definitions.VirtualHostDefinitionSet{})
	assert.Equal(t, &definitions.VirtualHostDefinitionSet{}, vdefs)
}

func TestChainAppliesInOrder(t *testing.T) {
	var order []string
	record := func(name string) DefinitionSetTransformer {
		return TransformerFunc(func(*definitions.ClusterDefinitionSet) { order = append(order, name) })
	}
	NewTransformationChain(record("a"), record("b"), record("c")).Apply(sampleDefinitionSet())

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestChainWithNilSet(t *testing.T) {
	assert.Nil(t, NewTransformationChain(ExcludeUsers{}).Apply(nil))
	assert.Nil(t, NewVirtualHostTransformationChain(ExcludeVhostPolicies{}).Apply(nil))
}

func TestUnknownTransformerName(t *testing.T) {
	_, err := NewTransformationChainFromNames([]string{"exclude_users", "make_it_faster"})
	require.Error(t, err)
	assert.True(t, errdefs.IsInvalidArgument(err))

	chain, err := NewTransformationChainFromNames([]string{" Exclude-Users ", ""})
	require.NoError(t, err)
	assert.Equal(t, 1, chain.Len())
}

func TestVirtualHostStripCmqKeysWithFixture(t *testing.T) {
	defs := loadVirtualHostFixture(t, "vhost_with_cmq_policies.json")

	p0, ok := defs.FindPolicy("cmq_group1")
	require.True(t, ok)
	assert.Len(t, p0.Definition, 4)

	chain, err := NewVirtualHostTransformationChainFromNames([]string{"strip_cmq_policies", "drop_empty_policies"})
	require.NoError(t, err)
	chain.Apply(defs)

	p1, ok := defs.FindPolicy("cmq_group1")
	require.True(t, ok)
	assert.Equal(t, []string{"queue-version"}, keys(p1.Definition))

	// cmq_group2 and cmq_group3 only had mirroring keys
	_, ok = defs.FindPolicy("cmq_group2")
	assert.False(t, ok)
	_, ok = defs.FindPolicy("cmq_group3")
	assert.False(t, ok)

	q1, ok := defs.FindQueue("group1.cq.1")
	require.True(t, ok)
	assert.Equal(t, definitions.QueueTypeQuorum, q1.QueueType())
}

func TestVirtualHostTransformersAreIdempotent(t *testing.T) {
	all := []VirtualHostDefinitionSetTransformer{
		StripCmqKeysFromVhostPolicies{},
		PrepareForQuorumQueueMigrationVhost{},
		DropEmptyVhostPolicies{},
		ExcludeVhostRuntimeParameters{},
		ExcludeVhostPolicies{},
		SwitchMirroredQueuesToQuorumVhost{},
	}
	for _, tr := range all {
		once := loadVirtualHostFixture(t, "vhost_with_cmq_policies.json")
		tr.Transform(once)

		twice := loadVirtualHostFixture(t, "vhost_with_cmq_policies.json")
		tr.Transform(twice)
		tr.Transform(twice)

		assert.Equal(t, once, twice)
	}
}

func TestPrepareForQuorumQueueMigrationVhost(t *testing.T) {
	defs := &definitions.VirtualHostDefinitionSet{
		Policies: []definitions.PolicyWithoutVirtualHost{{
			Name: "p", Pattern: ".*", ApplyTo: definitions.PolicyTargetQueues,
			Definition: definitions.PolicyDefinition{"queue-mode": "lazy", "overflow": "reject-publish-dlx"},
		}},
		Queues: []definitions.QueueDefinitionWithoutVirtualHost{{
			Name: "q", Durable: true,
			Arguments: definitions.XArguments{"x-queue-mode": "lazy", "x-max-length": 500},
		}},
	}
	NewVirtualHostTransformationChain(PrepareForQuorumQueueMigrationVhost{}, DropEmptyVhostPolicies{}).Apply(defs)

	assert.Empty(t, defs.Policies)
	assert.Equal(t, definitions.XArguments{"x-max-length": 500}, defs.Queues[0].Arguments)
}

func keys(m map[string]any) []string {
	var ks []string
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}

func TestQuorumMigrationChainDropsPriority(t *testing.T) {
	defs, err := definitions.ParseClusterDefinitionSet([]byte(`{
  "policies": [
    {"vhost": "/", "name": "ha", "pattern": ".*", "apply-to": "queues", "priority": 0,
     "definition": {"ha-mode": "all"}}
  ],
  "queues": [
    {"vhost": "/", "name": "q2", "durable": true, "auto_delete": false,
     "arguments": {"x-queue-mode": "lazy", "x-overflow": "reject-publish-dlx", "x-max-priority": 10}}
  ]
}`))
	require.NoError(t, err)

	chain, err := NewTransformationChainFromNames([]string{
		"strip_cmq_policies", "prepare_for_quorum_queue_migration", "drop_empty_policies",
	})
	require.NoError(t, err)
	chain.Apply(defs)

	q, ok := defs.FindQueue("/", "q2")
	require.True(t, ok)
	assert.Equal(t, definitions.XArguments{"x-queue-type": "quorum"}, q.Arguments)
	assert.Empty(t, defs.Policies)
}
