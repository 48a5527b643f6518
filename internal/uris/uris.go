// Package uris builds AMQP 0-9-1 connection URIs for federation upstreams
// and shovels, with TLS settings carried in query parameters.
package uris

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"dario.cat/mergo"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Query parameter keys understood by the RabbitMQ Erlang client.
const (
	PeerVerificationKey     = "verify"
	CACertificateFileKey    = "cacertfile"
	ClientCertificateKey    = "certfile"
	ClientPrivateKeyKey     = "keyfile"
	ServerNameIndicationKey = "server_name_indication"
)

var tlsKeys = []string{
	PeerVerificationKey,
	CACertificateFileKey,
	ClientCertificateKey,
	ClientPrivateKeyKey,
	ServerNameIndicationKey,
}

type PeerVerificationMode string

const (
	PeerVerificationEnabled  PeerVerificationMode = "verify_peer"
	PeerVerificationDisabled PeerVerificationMode = "verify_none"
)

// TLSClientSettings are the TLS query parameters of a URI. Empty fields
// are left alone by Builder.Merge.
type TLSClientSettings struct {
	PeerVerification     PeerVerificationMode
	CACertificateFile    string
	ClientCertificate    string
	ClientPrivateKey     string
	ServerNameIndication string
}

func WithVerification() TLSClientSettings {
	return TLSClientSettings{PeerVerification: PeerVerificationEnabled}
}

func WithoutVerification() TLSClientSettings {
	return TLSClientSettings{PeerVerification: PeerVerificationDisabled}
}

// Merge returns s with every non-empty field of other applied on top.
func (s TLSClientSettings) Merge(other TLSClientSettings) TLSClientSettings {
	out := s
	if err := mergo.Merge(&out, other, mergo.WithOverride); err != nil {
		// only reachable with mismatched types
		panic(err)
	}
	return out
}

func (s TLSClientSettings) params() map[string]string {
	m := make(map[string]string, len(tlsKeys))
	setIfNotEmpty(m, PeerVerificationKey, string(s.PeerVerification))
	setIfNotEmpty(m, CACertificateFileKey, s.CACertificateFile)
	setIfNotEmpty(m, ClientCertificateKey, s.ClientCertificate)
	setIfNotEmpty(m, ClientPrivateKeyKey, s.ClientPrivateKey)
	setIfNotEmpty(m, ServerNameIndicationKey, s.ServerNameIndication)
	return m
}

func setIfNotEmpty(m map[string]string, k, v string) {
	if v != "" {
		m[k] = v
	}
}

// Builder modifies the query string of an amqp:// or amqps:// URI.
//
// Query values are decoded on parse and written back without
// percent-encoding: certificate paths contain slashes and older RabbitMQ
// versions do not decode them. A Builder that was never modified returns
// the URI unchanged.
type Builder struct {
	u      *url.URL
	params map[string]string
	dirty  bool
}

// NewBuilder parses base, which must be a valid AMQP 0-9-1 URI.
func NewBuilder(base string) (*Builder, error) {
	if _, err := amqp.ParseURI(base); err != nil {
		return nil, fmt.Errorf("invalid AMQP URI: %w", err)
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid AMQP URI: %w", err)
	}
	b := &Builder{u: u, params: make(map[string]string)}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		b.params[unescape(k)] = unescape(v)
	}
	return b, nil
}

func unescape(s string) string {
	if d, err := url.QueryUnescape(s); err == nil {
		return d
	}
	return s
}

func (b *Builder) WithPeerVerification(mode PeerVerificationMode) *Builder {
	return b.WithQueryParam(PeerVerificationKey, string(mode))
}

func (b *Builder) WithCACertificateFile(path string) *Builder {
	return b.WithQueryParam(CACertificateFileKey, path)
}

func (b *Builder) WithClientCertificateFile(path string) *Builder {
	return b.WithQueryParam(ClientCertificateKey, path)
}

func (b *Builder) WithClientPrivateKeyFile(path string) *Builder {
	return b.WithQueryParam(ClientPrivateKeyKey, path)
}

func (b *Builder) WithServerNameIndication(hostname string) *Builder {
	return b.WithQueryParam(ServerNameIndicationKey, hostname)
}

func (b *Builder) WithQueryParam(key, value string) *Builder {
	b.params[key] = value
	b.dirty = true
	return b
}

func (b *Builder) WithoutQueryParam(key string) *Builder {
	if _, ok := b.params[key]; ok {
		delete(b.params, key)
		b.dirty = true
	}
	return b
}

// Merge sets the non-empty TLS settings and keeps the other TLS
// parameters already present.
func (b *Builder) Merge(settings TLSClientSettings) *Builder {
	for k, v := range settings.params() {
		b.WithQueryParam(k, v)
	}
	return b
}

// Replace drops every TLS parameter of the URI and then applies settings.
func (b *Builder) Replace(settings TLSClientSettings) *Builder {
	for _, k := range tlsKeys {
		b.WithoutQueryParam(k)
	}
	return b.Merge(settings)
}

// QueryParams returns a copy of the decoded query parameters.
func (b *Builder) QueryParams() map[string]string {
	out := make(map[string]string, len(b.params))
	for k, v := range b.params {
		out[k] = v
	}
	return out
}

// TLSSettings returns the TLS parameters currently set on the URI.
func (b *Builder) TLSSettings() TLSClientSettings {
	return TLSClientSettings{
		PeerVerification:     PeerVerificationMode(b.params[PeerVerificationKey]),
		CACertificateFile:    b.params[CACertificateFileKey],
		ClientCertificate:    b.params[ClientCertificateKey],
		ClientPrivateKey:     b.params[ClientPrivateKeyKey],
		ServerNameIndication: b.params[ServerNameIndicationKey],
	}
}

// Build returns the URI. Parameters are sorted by key.
func (b *Builder) Build() string {
	if !b.dirty {
		return b.u.String()
	}
	u := *b.u
	keys := make([]string, 0, len(b.params))
	for k := range b.params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + b.params[k]
	}
	u.RawQuery = strings.Join(pairs, "&")
	u.ForceQuery = false
	return u.String()
}
