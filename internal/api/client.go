// Package api is a client for the RabbitMQ HTTP API.
package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultEndpoint  = "http://localhost:15672/api"
	DefaultUsername  = "guest"
	DefaultPassword  = "guest"
	DefaultUserAgent = "rabbitmq-http-api-go"
)

// RetrySettings controls how many times a request that failed with a
// transport error or a 502, 503 or 504 response is attempted.
// MaxAttempts of 0 or 1 means no retries.
type RetrySettings struct {
	MaxAttempts uint
	Delay       time.Duration
}

// Client is safe for concurrent use once constructed.
type Client struct {
	endpoint  *url.URL
	username  string
	password  string
	userAgent string
	client    *http.Client
	retry     RetrySettings

	// applied to a copy of client after every other option
	timeout        time.Duration
	tracing        bool
	requestLogging bool
}

// Option configures a Client.
type Option func(*Client) error

// WithEndpoint sets the API root, for example "https://rabbit.eng.example.com:15671/api".
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		u, err := url.Parse(strings.TrimRight(endpoint, "/"))
		if err != nil {
			return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
		}
		c.endpoint = u
		return nil
	}
}

func WithBasicAuth(username, password string) Option {
	return func(c *Client) error {
		c.username = username
		c.password = password
		return nil
	}
}

// WithHTTPClient overrides the client used for requests. TLS settings,
// connection pooling and redirects are configured there.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.client = hc
		}
		return nil
	}
}

// WithTimeout sets the timeout of the whole request, retries excluded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.timeout = timeout
		return nil
	}
}

func WithRetrySettings(rs RetrySettings) Option {
	return func(c *Client) error {
		c.retry = rs
		return nil
	}
}

// WithOpenTelemetry instruments requests with otelhttp using the global
// tracer and meter providers.
func WithOpenTelemetry() Option {
	return func(c *Client) error {
		c.tracing = true
		return nil
	}
}

// WithRequestLogging logs every request and response status at debug level.
func WithRequestLogging() Option {
	return func(c *Client) error {
		c.requestLogging = true
		return nil
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// NewClient returns a client for the local node with the default
// credentials unless options say otherwise.
func NewClient(opts ...Option) (*Client, error) {
	endpoint, _ := url.Parse(DefaultEndpoint)
	c := &Client{
		endpoint:  endpoint,
		username:  DefaultUsername,
		password:  DefaultPassword,
		userAgent: DefaultUserAgent,
		client:    &http.Client{},
	}
	for _, op := range opts {
		if err := op(c); err != nil {
			return nil, err
		}
	}

	if c.timeout > 0 || c.tracing || c.requestLogging {
		// never modify a client the caller passed in
		hc := *c.client
		if c.timeout > 0 {
			hc.Timeout = c.timeout
		}
		transport := hc.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		if c.requestLogging {
			transport = loggingTransport{next: transport}
		}
		if c.tracing {
			transport = otelhttp.NewTransport(transport)
		}
		hc.Transport = transport
		c.client = &hc
	}
	return c, nil
}

// Endpoint returns the API root the client sends requests to.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}
