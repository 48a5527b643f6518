package transformers

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/containerd/errdefs"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/logger"
)

// TransformationChain applies transformers left to right, each one seeing
// the result of the previous. It never reorders them.
type TransformationChain struct {
	chain []DefinitionSetTransformer
}

func NewTransformationChain(transformers ...DefinitionSetTransformer) *TransformationChain {
	return &TransformationChain{chain: transformers}
}

func (c *TransformationChain) Len() int {
	return len(c.chain)
}

// Apply rewrites defs in place and returns it.
func (c *TransformationChain) Apply(defs *definitions.ClusterDefinitionSet) *definitions.ClusterDefinitionSet {
	if defs == nil {
		return nil
	}
	logger.Debug("applying transformation chain", "count", len(c.chain))
	for i, t := range c.chain {
		logger.Debug("applying transformer", "step", i+1, "transformer", fmt.Sprintf("%T", t))
		t.Transform(defs)
	}
	return defs
}

type VirtualHostTransformationChain struct {
	chain []VirtualHostDefinitionSetTransformer
}

func NewVirtualHostTransformationChain(transformers ...VirtualHostDefinitionSetTransformer) *VirtualHostTransformationChain {
	return &VirtualHostTransformationChain{chain: transformers}
}

func (c *VirtualHostTransformationChain) Len() int {
	return len(c.chain)
}

func (c *VirtualHostTransformationChain) Apply(defs *definitions.VirtualHostDefinitionSet) *definitions.VirtualHostDefinitionSet {
	if defs == nil {
		return nil
	}
	logger.Debug("applying virtual host transformation chain", "count", len(c.chain))
	for i, t := range c.chain {
		logger.Debug("applying transformer", "step", i+1, "transformer", fmt.Sprintf("%T", t))
		t.Transform(defs)
	}
	return defs
}

var clusterTransformers = map[string][]DefinitionSetTransformer{
	"strip_cmq_keys_from_policies":       {StripCmqKeysFromPolicies{}},
	"prepare_for_quorum_queue_migration": {PrepareForQuorumQueueMigration{}},
	"drop_empty_policies":                {DropEmptyPolicies{}},
	"exclude_users":                      {ExcludeUsers{}},
	"exclude_permissions":                {ExcludePermissions{}},
	"exclude_runtime_parameters":         {ExcludeRuntimeParameters{}},
	"exclude_global_runtime_parameters":  {ExcludeGlobalRuntimeParameters{}},
	"exclude_policies":                   {ExcludePolicies{}},
	"obfuscate_usernames":                {ObfuscateUsernames{}},
	"switch_mirrored_queues_to_quorum":   {SwitchMirroredQueuesToQuorum{}},
	// older name, kept for existing scripts
	"strip_cmq_policies":                 {SwitchMirroredQueuesToQuorum{}, StripCmqKeysFromPolicies{}},
}

var virtualHostTransformers = map[string][]VirtualHostDefinitionSetTransformer{
	"strip_cmq_keys_from_policies":       {StripCmqKeysFromVhostPolicies{}},
	"prepare_for_quorum_queue_migration": {PrepareForQuorumQueueMigrationVhost{}},
	"drop_empty_policies":                {DropEmptyVhostPolicies{}},
	"exclude_runtime_parameters":         {ExcludeVhostRuntimeParameters{}},
	"exclude_policies":                   {ExcludeVhostPolicies{}},
	"switch_mirrored_queues_to_quorum":   {SwitchMirroredQueuesToQuorumVhost{}},
	"strip_cmq_policies":                 {SwitchMirroredQueuesToQuorumVhost{}, StripCmqKeysFromVhostPolicies{}},
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// NewTransformationChainFromNames builds a chain from transformer names in
// the given order. Blank names are skipped.
func NewTransformationChainFromNames(names []string) (*TransformationChain, error) {
	var chain []DefinitionSetTransformer
	for _, name := range names {
		n := normalizeName(name)
		if n == "" {
			continue
		}
		ts, ok := clusterTransformers[n]
		if !ok {
			return nil, fmt.Errorf("unknown transformer %q: %w", name, errdefs.ErrInvalidArgument)
		}
		chain = append(chain, ts...)
	}
	return NewTransformationChain(chain...), nil
}

func NewVirtualHostTransformationChainFromNames(names []string) (*VirtualHostTransformationChain, error) {
	var chain []VirtualHostDefinitionSetTransformer
	for _, name := range names {
		n := normalizeName(name)
		if n == "" {
			continue
		}
		ts, ok := virtualHostTransformers[n]
		if !ok {
			return nil, fmt.Errorf("unknown virtual host transformer %q: %w", name, errdefs.ErrInvalidArgument)
		}
		chain = append(chain, ts...)
	}
	return NewVirtualHostTransformationChain(chain...), nil
}

// Names lists the transformer names accepted by NewTransformationChainFromNames.
func Names() []string {
	return slices.Sorted(maps.Keys(clusterTransformers))
}

func VirtualHostNames() []string {
	return slices.Sorted(maps.Keys(virtualHostTransformers))
}
