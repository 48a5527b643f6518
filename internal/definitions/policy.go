package definitions

import (
	"encoding/json"
	"maps"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PolicyTarget is the "apply-to" value of a policy, and the kind of object
// a policy is matched against.
type PolicyTarget string

const (
	PolicyTargetAll           PolicyTarget = "all"
	PolicyTargetQueues        PolicyTarget = "queues"
	PolicyTargetClassicQueues PolicyTarget = "classic_queues"
	PolicyTargetQuorumQueues  PolicyTarget = "quorum_queues"
	PolicyTargetStreams       PolicyTarget = "streams"
	PolicyTargetExchanges     PolicyTarget = "exchanges"
)

func (t PolicyTarget) normalized() PolicyTarget {
	if t == "" {
		return PolicyTargetAll
	}
	return t
}

func (t PolicyTarget) IsQueueKind() bool {
	switch t {
	case PolicyTargetQueues, PolicyTargetClassicQueues, PolicyTargetQuorumQueues, PolicyTargetStreams:
		return true
	}
	return false
}

// DoesApplyTo reports whether a policy with this target can apply to an
// object of the given kind. "all" is compatible with everything and
// "queues" with every queue kind, streams included.
func (t PolicyTarget) DoesApplyTo(kind PolicyTarget) bool {
	t, kind = t.normalized(), kind.normalized()
	switch {
	case t == PolicyTargetAll || kind == PolicyTargetAll:
		return true
	case t == kind:
		return true
	case t == PolicyTargetQueues:
		return kind.IsQueueKind()
	}
	return false
}

// PolicyDefinition is the key/value body of a policy. Keys are not prefixed.
type PolicyDefinition map[string]any

func (d PolicyDefinition) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(d))
}

func (d *PolicyDefinition) OptionalArguments() map[string]any { return *d }

func (d *PolicyDefinition) SetOptionalArguments(m map[string]any) { *d = m }

func (d *PolicyDefinition) ArgumentKeyPrefix() string { return "" }

func (d PolicyDefinition) clone() PolicyDefinition {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// NamedPolicyTarget is an object a policy can be matched against.
type NamedPolicyTarget interface {
	ObjectName() string
	ObjectVirtualHost() string
	PolicyTarget() PolicyTarget
}

type Policy struct {
	VirtualHost string           `json:"vhost"`
	Name        string           `json:"name"`
	Pattern     string           `json:"pattern"`
	ApplyTo     PolicyTarget     `json:"apply-to"`
	Priority    int              `json:"priority"`
	Definition  PolicyDefinition `json:"definition"`
}

func (p *Policy) OptionalArguments() map[string]any { return p.Definition }

func (p *Policy) SetOptionalArguments(m map[string]any) { p.Definition = m }

func (p *Policy) ArgumentKeyPrefix() string { return "" }

func (p *Policy) HasCMQKeys() bool {
	return ArgumentsOf(p).HasCMQKeys()
}

func (p *Policy) IsEmpty() bool {
	return len(p.Definition) == 0
}

// DoesMatchName requires the same virtual host, a compatible kind and a
// pattern match. Invalid patterns never match.
func (p *Policy) DoesMatchName(vhost, name string, kind PolicyTarget) bool {
	return p.VirtualHost == vhost && isNameMatch(p.Pattern, p.ApplyTo, name, kind)
}

func (p *Policy) DoesMatchObject(obj NamedPolicyTarget) bool {
	return p.DoesMatchName(obj.ObjectVirtualHost(), obj.ObjectName(), obj.PolicyTarget())
}

// WithOverrides returns a copy with a new name and priority whose definition
// is merged with overrides.
func (p Policy) WithOverrides(name string, priority int, overrides PolicyDefinition) Policy {
	p.Name = name
	p.Priority = priority
	p.Definition = p.Definition.clone()
	ArgumentsOf(&p).Merge(overrides)
	return p
}

// PolicyWithoutVirtualHost is a policy inside a virtual host definition set.
type PolicyWithoutVirtualHost struct {
	Name       string           `json:"name" toml:"name"`
	Pattern    string           `json:"pattern" toml:"pattern"`
	ApplyTo    PolicyTarget     `json:"apply-to" toml:"apply-to"`
	Priority   int              `json:"priority" toml:"priority"`
	Definition PolicyDefinition `json:"definition" toml:"definition"`
}

func (p *PolicyWithoutVirtualHost) OptionalArguments() map[string]any { return p.Definition }

func (p *PolicyWithoutVirtualHost) SetOptionalArguments(m map[string]any) { p.Definition = m }

func (p *PolicyWithoutVirtualHost) ArgumentKeyPrefix() string { return "" }

func (p *PolicyWithoutVirtualHost) HasCMQKeys() bool {
	return ArgumentsOf(p).HasCMQKeys()
}

func (p *PolicyWithoutVirtualHost) IsEmpty() bool {
	return len(p.Definition) == 0
}

func (p *PolicyWithoutVirtualHost) DoesMatchName(name string, kind PolicyTarget) bool {
	return isNameMatch(p.Pattern, p.ApplyTo, name, kind)
}

const patternCacheSize = 256

type compiledPattern struct {
	re *regexp.Regexp
}

var patternCache = mustPatternCache()

func mustPatternCache() *lru.Cache[string, compiledPattern] {
	c, err := lru.New[string, compiledPattern](patternCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

func compilePattern(pattern string) *regexp.Regexp {
	if cp, ok := patternCache.Get(pattern); ok {
		return cp.re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	patternCache.Add(pattern, compiledPattern{re: re})
	return re
}

func isNameMatch(pattern string, applyTo PolicyTarget, name string, kind PolicyTarget) bool {
	if !applyTo.DoesApplyTo(kind) {
		return false
	}
	re := compilePattern(pattern)
	return re != nil && re.MatchString(name)
}
