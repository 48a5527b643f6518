package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/api"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/snapshot"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/uris"
)

const EnvPrefix = "RABBITMQ"

func check(e error) {
	if e != nil {
		panic(e)
	}
}

// Config is read from RABBITMQ_* environment variables, e.g. RABBITMQ_ENDPOINT.
type Config struct {
	Endpoint      string        `env:"ENDPOINT" default:"http://localhost:15672/api" usage:"HTTP API endpoint"`
	User          string        `env:"USER" default:"guest" usage:"HTTP API and AMQP user"`
	Pass          string        `env:"PASS" default:"guest" usage:"HTTP API and AMQP password"`
	LogLevel      string        `env:"LOG_LEVEL" default:"info" usage:"debug, info, warn or error"`
	Timeout       time.Duration `env:"TIMEOUT" default:"60s" usage:"HTTP request timeout"`
	RetryAttempts uint          `env:"RETRY_ATTEMPTS" default:"3" usage:"attempts for requests failing with 502, 503 or 504"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" default:"1s" usage:"delay between attempts"`
	Tracing       bool          `env:"TRACING" default:"false" usage:"instrument HTTP requests with OpenTelemetry"`

	AMQPScheme      string `env:"AMQP_SCHEME" default:"amqp" usage:"amqp or amqps"`
	AMQPHost        string `env:"AMQP_HOST" default:"localhost" usage:"AMQP host"`
	AMQPPort        int    `env:"AMQP_PORT" default:"5672" usage:"AMQP port"`
	AMQPVirtualHost string `env:"AMQP_VHOST" default:"/" usage:"virtual host to declare topology in"`
	AMQPCACertFile  string `env:"AMQP_CACERTFILE" usage:"CA bundle for amqps"`
	AMQPCertFile    string `env:"AMQP_CERTFILE" usage:"client certificate for amqps"`
	AMQPKeyFile     string `env:"AMQP_KEYFILE" usage:"client private key for amqps"`
	AMQPVerifyPeer  bool   `env:"AMQP_VERIFY_PEER" default:"true" usage:"verify the server certificate"`

	Definitions string `env:"DEFINITIONS" usage:"topology file in TOML"`

	S3Endpoint  string `env:"S3_ENDPOINT" usage:"S3-compatible endpoint for snapshots"`
	S3Region    string `env:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET" default:"rabbitmq-definitions"`
	S3UseSSL    bool   `env:"S3_USE_SSL" default:"true"`
}

// Load reads dotenvFiles, when they exist, and then the environment.
// Variables already set in the environment win over dotenv files.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var config Config
	loader := aconfig.LoaderFor(&config, aconfig.Config{
		EnvPrefix:        EnvPrefix,
		SkipFiles:        true,
		SkipFlags:        true,
		AllowUnknownEnvs: true,
	})
	if err := loader.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &config, nil
}

func NewConfig() *Config {
	config, err := Load()
	check(err)
	return config
}

// APIOptions configures an api.Client from c.
func (c *Config) APIOptions() []api.Option {
	opts := []api.Option{
		api.WithEndpoint(c.Endpoint),
		api.WithBasicAuth(c.User, c.Pass),
		api.WithTimeout(c.Timeout),
		api.WithRetrySettings(api.RetrySettings{MaxAttempts: c.RetryAttempts, Delay: c.RetryDelay}),
	}
	if c.LogLevel == "debug" {
		opts = append(opts, api.WithRequestLogging())
	}
	if c.Tracing {
		opts = append(opts, api.WithOpenTelemetry())
	}
	return opts
}

func (c *Config) TLSSettings() uris.TLSClientSettings {
	s := uris.TLSClientSettings{
		CACertificateFile: c.AMQPCACertFile,
		ClientCertificate: c.AMQPCertFile,
		ClientPrivateKey:  c.AMQPKeyFile,
	}
	if c.AMQPScheme == "amqps" {
		if c.AMQPVerifyPeer {
			s.PeerVerification = uris.PeerVerificationEnabled
		} else {
			s.PeerVerification = uris.PeerVerificationDisabled
		}
	}
	return s
}

// AMQPURI returns the AMQP 0-9-1 URI with TLS query parameters for amqps.
func (c *Config) AMQPURI() (string, error) {
	base := amqp.URI{
		Scheme:   c.AMQPScheme,
		Host:     c.AMQPHost,
		Port:     c.AMQPPort,
		Username: c.User,
		Password: c.Pass,
		Vhost:    c.AMQPVirtualHost,
	}.String()

	b, err := uris.NewBuilder(base)
	if err != nil {
		return "", err
	}
	if c.AMQPScheme == "amqps" {
		b.Merge(c.TLSSettings())
	}
	return b.Build(), nil
}

func (c *Config) S3() snapshot.S3Config {
	return snapshot.S3Config{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Bucket:    c.S3Bucket,
		UseSSL:    c.S3UseSSL,
	}
}

// Topology reads the TOML topology file named by Definitions.
func (c *Config) Topology() (*definitions.VirtualHostDefinitionSet, error) {
	if c.Definitions == "" {
		return nil, errors.New("no topology file configured, set RABBITMQ_DEFINITIONS")
	}
	data, err := os.ReadFile(c.Definitions)
	if err != nil {
		return nil, err
	}
	return definitions.LoadVirtualHostDefinitionSetTOML(data)
}
