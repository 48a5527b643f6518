// Package transformers rewrites exported definition sets before they are
// imported elsewhere, for example when moving from classic mirrored queues
// to quorum queues.
//
// Every built-in transformer performs one rewrite and is idempotent. They
// do not depend on each other's order, with two documented exceptions:
// DropEmptyPolicies only has work to do after the stripping transformers,
// and SwitchMirroredQueuesToQuorum must run before them because it selects
// policies by their mirroring keys.
package transformers

import (
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

// DefinitionSetTransformer rewrites a cluster-wide definition set in place.
type DefinitionSetTransformer interface {
	Transform(defs *definitions.ClusterDefinitionSet)
}

// VirtualHostDefinitionSetTransformer rewrites a virtual host definition set in place.
type VirtualHostDefinitionSetTransformer interface {
	Transform(defs *definitions.VirtualHostDefinitionSet)
}

type TransformerFunc func(defs *definitions.ClusterDefinitionSet)

func (f TransformerFunc) Transform(defs *definitions.ClusterDefinitionSet) { f(defs) }

type VirtualHostTransformerFunc func(defs *definitions.VirtualHostDefinitionSet)

func (f VirtualHostTransformerFunc) Transform(defs *definitions.VirtualHostDefinitionSet) { f(defs) }
