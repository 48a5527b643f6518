package transformers

import (
	"strings"

	"github.com/google/uuid"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

type ExcludeUsers struct{}

func (ExcludeUsers) Transform(defs *definitions.ClusterDefinitionSet) {
	defs.Users = emptied(defs.Users)
}

// ExcludePermissions removes both regular and topic permissions.
type ExcludePermissions struct{}

func (ExcludePermissions) Transform(defs *definitions.ClusterDefinitionSet) {
	defs.Permissions = emptied(defs.Permissions)
	defs.TopicPermissions = emptied(defs.TopicPermissions)
}

// ExcludeRuntimeParameters removes per-vhost runtime parameters only.
// Global parameters are handled by ExcludeGlobalRuntimeParameters.
type ExcludeRuntimeParameters struct{}

func (ExcludeRuntimeParameters) Transform(defs *definitions.ClusterDefinitionSet) {
	defs.Parameters = emptied(defs.Parameters)
}

type ExcludeGlobalRuntimeParameters struct{}

func (ExcludeGlobalRuntimeParameters) Transform(defs *definitions.ClusterDefinitionSet) {
	defs.GlobalParameters = emptied(defs.GlobalParameters)
}

// ExcludePolicies removes policies and operator policies.
type ExcludePolicies struct{}

func (ExcludePolicies) Transform(defs *definitions.ClusterDefinitionSet) {
	defs.Policies = emptied(defs.Policies)
	defs.OperatorPolicies = emptied(defs.OperatorPolicies)
}

type ExcludeVhostRuntimeParameters struct{}

func (ExcludeVhostRuntimeParameters) Transform(defs *definitions.VirtualHostDefinitionSet) {
	defs.Parameters = emptied(defs.Parameters)
}

type ExcludeVhostPolicies struct{}

func (ExcludeVhostPolicies) Transform(defs *definitions.VirtualHostDefinitionSet) {
	defs.Policies = emptied(defs.Policies)
}

// emptied keeps a nil collection nil so empty sets pass through unchanged.
func emptied[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return []T{}
}

const (
	ObfuscatedUsernamePrefix = "obfuscated-user-"
	// salted SHA-256 of a throwaway password, nobody can log in with it
	ObfuscatedPasswordHash = "AAAAAIEodO2uxqGN8VpIyso5YLxqWwKs4ympxGdrx7YfWoQu"
)

var usernameNamespace = uuid.MustParse("7e46351a-14a6-52dc-9860-f0dc2bddf904")

// ObfuscatedUsername maps a username to its placeholder. The mapping is
// deterministic and placeholders map to themselves.
func ObfuscatedUsername(name string) string {
	if strings.HasPrefix(name, ObfuscatedUsernamePrefix) {
		return name
	}
	return ObfuscatedUsernamePrefix + uuid.NewSHA1(usernameNamespace, []byte(name)).String()
}

// ObfuscateUsernames renames every user, and every permission row that
// references one, to a placeholder and replaces password hashes with a
// fixed dummy value.
type ObfuscateUsernames struct{}

func (ObfuscateUsernames) Transform(defs *definitions.ClusterDefinitionSet) {
	for i := range defs.Users {
		u := &defs.Users[i]
		u.Name = ObfuscatedUsername(u.Name)
		u.PasswordHash = ObfuscatedPasswordHash
	}
	for i := range defs.Permissions {
		defs.Permissions[i].User = ObfuscatedUsername(defs.Permissions[i].User)
	}
	for i := range defs.TopicPermissions {
		defs.TopicPermissions[i].User = ObfuscatedUsername(defs.TopicPermissions[i].User)
	}
}
