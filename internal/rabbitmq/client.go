// Package rabbitmq declares topology over an AMQP 0-9-1 connection.
package rabbitmq

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/logger"
)

const (
	reconnectDelay = 5 * time.Second
	reInitDelay    = 2 * time.Second
)

var (
	errNotConnected  = errors.New("not connected to a server")
	errAlreadyClosed = errors.New("already closed: not connected to the server")
)

type Connector interface {
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	Channel() (Channeler, error)
	Close() error
	IsClosed() bool
}

// amqpConnection adapts *amqp.Connection to Connector.
type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (Channeler, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(addr string, config amqp.Config) (Connector, error) {
	conn, err := amqp.DialConfig(addr, config)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

type Client struct {
	addr            string
	connection      Connector
	notifyConnClose chan *amqp.Error
	dial            func(addr string, config amqp.Config) (Connector, error)
	configAmqp      amqp.Config
	channels        []*Channel
	retryDelay      time.Duration
	mu              sync.Mutex
	IsReady         bool
}

func (c *Client) connect() error {
	conn, err := c.dial(c.addr, c.configAmqp)
	if err != nil {
		return err
	}
	c.connection = conn
	c.notifyConnClose = conn.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

// Connect dials until it succeeds or ctx is done.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		err := c.connect()
		if err == nil {
			c.IsReady = true
			logger.Debug("connected", "addr", redacted(c.addr))
			return nil
		}

		logger.Debug("failed to connect, retrying", "err", err, "in", c.retryDelay)
		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), err)
		case <-time.After(c.retryDelay):
		}
	}
}

// HandleReconnect redials after the server closes the connection. Channels
// opened before are reopened on the new connection.
func (c *Client) HandleReconnect(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case amqpErr, ok := <-c.notifyConnClose:
			if !ok || !c.IsReady {
				return
			}
			logger.Warn("connection closed, reconnecting", "err", amqpErr)
			c.IsReady = false
			if err := c.Connect(ctx); err != nil {
				return
			}
			c.mu.Lock()
			for _, ch := range c.channels {
				if err := ch.Connect(ctx, c.connection); err != nil {
					logger.Warn("failed to reopen channel", "err", err)
				}
			}
			c.mu.Unlock()
			logger.Info("connection recovered")
		}
	}
}

// NewChannel opens a channel on the current connection.
func (c *Client) NewChannel(ctx context.Context) (*Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.IsReady || c.connection == nil {
		return nil, errNotConnected
	}

	channel := &Channel{retryDelay: c.retryDelay}
	if err := channel.Connect(ctx, c.connection); err != nil {
		return nil, err
	}
	c.channels = append(c.channels, channel)
	return channel, nil
}

// NewDeclarer opens a dedicated channel for topology declarations.
func (c *Client) NewDeclarer(ctx context.Context) (*Declarer, error) {
	ch, err := c.NewChannel(ctx)
	if err != nil {
		return nil, err
	}
	return &Declarer{client: c, channel: ch}, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	logger.Debug("closing AMQP connection")
	if !c.IsReady {
		return errAlreadyClosed
	}
	c.IsReady = false

	var errs []error
	for _, ch := range c.channels {
		errs = append(errs, ch.Close())
	}
	c.channels = nil
	errs = append(errs, c.connection.Close())
	return errors.Join(errs...)
}

// New returns a client that reports name as its connection name.
func New(name string, addr string) *Client {
	configAmqp := amqp.Config{Properties: amqp.NewConnectionProperties()}
	configAmqp.Properties.SetClientConnectionName(name)
	return &Client{
		configAmqp: configAmqp,
		addr:       addr,
		dial:       dialAMQP,
		retryDelay: reconnectDelay,
	}
}

func redacted(addr string) string {
	uri, err := amqp.ParseURI(addr)
	if err != nil {
		return "<invalid URI>"
	}
	uri.Password = "xxxxx"
	return uri.String()
}
