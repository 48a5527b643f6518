package rabbitmq

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channeler is the subset of *amqp.Channel used for declarations.
type Channeler interface {
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	ExchangeBind(destination, key, source string, noWait bool, args amqp.Table) error
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Close() error
}

type Channel struct {
	Channeler
	IsDisconnected chan *amqp.Error
	IsReady        bool
	retryDelay     time.Duration
}

// Connect opens a channel, retrying until it succeeds or ctx is done.
func (c *Channel) Connect(ctx context.Context, conn Connector) error {
	for {
		ch, err := conn.Channel()
		if err != nil {
			if conn.IsClosed() {
				return errNotConnected
			}
			select {
			case <-time.After(defaultRetryDelay(c.retryDelay)):
				continue
			case <-ctx.Done():
				return err
			}
		}

		c.Channeler = ch
		c.IsDisconnected = ch.NotifyClose(make(chan *amqp.Error, 1))
		c.IsReady = true
		return nil
	}
}

// Closed reports whether the server closed the channel, which it does
// after any failed declaration.
func (c *Channel) Closed() bool {
	if !c.IsReady {
		return true
	}
	select {
	case <-c.IsDisconnected:
		c.IsReady = false
		return true
	default:
		return false
	}
}

func (c *Channel) Close() error {
	if c.Closed() {
		return nil
	}
	c.IsReady = false
	return c.Channeler.Close()
}

func defaultRetryDelay(d time.Duration) time.Duration {
	if d <= 0 {
		return reInitDelay
	}
	return d
}
