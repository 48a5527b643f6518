package definitions

import (
	"encoding/json"
	"maps"
	"strings"
)

// Base names of well-known optional arguments. Queue and exchange arguments
// carry them with the "x-" prefix, policy definitions without it.
const (
	MessageTTLKey            = "message-ttl"
	QueueTTLKey              = "expires"
	MaxLengthKey             = "max-length"
	MaxLengthBytesKey        = "max-length-bytes"
	DeadLetterExchangeKey    = "dead-letter-exchange"
	DeadLetterRoutingKey     = "dead-letter-routing-key"
	OverflowKey              = "overflow"
	QueueModeKey             = "queue-mode"
	MaxPriorityKey           = "max-priority"
	QueueTypeKey             = "queue-type"
	AlternateExchangeKey     = "alternate-exchange"
	MaxAgeKey                = "max-age"
	DeliveryLimitKey         = "delivery-limit"
	XArgumentPrefix          = "x-"
	ServerNamedPrefix        = "amq."
	OverflowRejectPublishDLX = "reject-publish-dlx"
)

// Classic mirrored queue keys, unprefixed.
var cmqKeys = []string{
	"ha-mode",
	"ha-params",
	"ha-promote-on-shutdown",
	"ha-promote-on-failure",
	"ha-sync-mode",
	"ha-sync-batch-size",
}

// XArguments are the optional arguments of a queue, exchange or binding.
type XArguments map[string]any

func (a XArguments) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(a))
}

// ArgumentSource is implemented by records that carry a loosely typed
// optional argument map: queues, exchanges, policy definitions and the
// request types used to declare them.
type ArgumentSource interface {
	OptionalArguments() map[string]any
	SetOptionalArguments(map[string]any)
	// ArgumentKeyPrefix is "x-" for queue and exchange arguments and
	// empty for policy definitions.
	ArgumentKeyPrefix() string
}

// OptionalArguments provides typed access on top of an ArgumentSource.
type OptionalArguments struct {
	src ArgumentSource
}

func ArgumentsOf(src ArgumentSource) OptionalArguments {
	return OptionalArguments{src: src}
}

// Key returns the base key in the naming convention of the source.
func (a OptionalArguments) Key(base string) string {
	return a.src.ArgumentKeyPrefix() + base
}

func (a OptionalArguments) Get(key string) (any, bool) {
	v, ok := a.src.OptionalArguments()[key]
	return v, ok
}

func (a OptionalArguments) Len() int {
	return len(a.src.OptionalArguments())
}

func (a OptionalArguments) IsEmpty() bool {
	return a.Len() == 0
}

// Insert upserts key, creating the map when the source has none yet.
func (a OptionalArguments) Insert(key string, value any) {
	m := a.src.OptionalArguments()
	if m == nil {
		m = make(map[string]any)
	}
	m[key] = value
	a.src.SetOptionalArguments(m)
}

// Merge copies every key of other into the source, overwriting keys that
// exist on both sides.
func (a OptionalArguments) Merge(other map[string]any) {
	if len(other) == 0 {
		return
	}
	m := a.src.OptionalArguments()
	if m == nil {
		m = make(map[string]any, len(other))
	}
	maps.Copy(m, other)
	a.src.SetOptionalArguments(m)
}

// Remove deletes keys and reports how many of them were present.
func (a OptionalArguments) Remove(keys ...string) int {
	m := a.src.OptionalArguments()
	n := 0
	for _, k := range keys {
		if _, ok := m[k]; ok {
			delete(m, k)
			n++
		}
	}
	return n
}

func (a OptionalArguments) ContainsAnyKeysOf(keys ...string) bool {
	m := a.src.OptionalArguments()
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func (a OptionalArguments) has(base string) bool {
	_, ok := a.Get(a.Key(base))
	return ok
}

func (a OptionalArguments) HasMessageTTL() bool { return a.has(MessageTTLKey) }

func (a OptionalArguments) HasQueueTTL() bool { return a.has(QueueTTLKey) }

// HasTTL is true if either a message TTL or a queue TTL is set.
func (a OptionalArguments) HasTTL() bool {
	return a.HasMessageTTL() || a.HasQueueTTL()
}

func (a OptionalArguments) HasLengthLimitInMessages() bool { return a.has(MaxLengthKey) }

func (a OptionalArguments) HasLengthLimitInBytes() bool { return a.has(MaxLengthBytesKey) }

func (a OptionalArguments) HasDeadLetterExchange() bool { return a.has(DeadLetterExchangeKey) }

// CMQKeys returns the classic mirrored queue keys in the source's convention.
func (a OptionalArguments) CMQKeys() []string {
	keys := make([]string, len(cmqKeys))
	for i, k := range cmqKeys {
		keys[i] = a.Key(k)
	}
	return keys
}

func (a OptionalArguments) HasCMQKeys() bool {
	return a.ContainsAnyKeysOf(a.CMQKeys()...)
}

func (a OptionalArguments) hasIncompatibleOverflow() bool {
	v, ok := a.Get(a.Key(OverflowKey))
	if !ok {
		return false
	}
	s, _ := v.(string)
	return s == OverflowRejectPublishDLX
}

// max-priority is only rejected as a queue argument, policies cannot set it
func (a OptionalArguments) hasIncompatiblePriority() bool {
	return a.src.ArgumentKeyPrefix() == XArgumentPrefix && a.has(MaxPriorityKey)
}

// HasQuorumQueueIncompatibleKeys reports CMQ keys, a queue mode, a priority
// or an overflow behaviour quorum queues do not support.
func (a OptionalArguments) HasQuorumQueueIncompatibleKeys() bool {
	return a.HasCMQKeys() || a.has(QueueModeKey) || a.hasIncompatiblePriority() || a.hasIncompatibleOverflow()
}

// StripCMQKeys removes classic mirrored queue keys and returns the number removed.
func (a OptionalArguments) StripCMQKeys() int {
	return a.Remove(a.CMQKeys()...)
}

// StripQuorumQueueIncompatibleKeys removes every key quorum queues reject.
// The overflow key is only removed when its value is reject-publish-dlx.
func (a OptionalArguments) StripQuorumQueueIncompatibleKeys() int {
	n := a.StripCMQKeys() + a.Remove(a.Key(QueueModeKey))
	if a.hasIncompatiblePriority() {
		n += a.Remove(a.Key(MaxPriorityKey))
	}
	if a.hasIncompatibleOverflow() {
		n += a.Remove(a.Key(OverflowKey))
	}
	return n
}

// IsServerNamed is true for names the server generates or reserves.
func IsServerNamed(name string) bool {
	return name == "" || strings.HasPrefix(name, ServerNamedPrefix)
}
