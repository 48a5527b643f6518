package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/logger"
)

const defaultExchangeType = "direct"

// DeclarationSummary counts the objects a Declare call declared.
type DeclarationSummary struct {
	Exchanges int
	Queues    int
	Bindings  int
	Skipped   int
}

// Declarer declares the queues, exchanges and bindings of a virtual host
// definition set on a single channel. It is not safe for concurrent use.
type Declarer struct {
	client  *Client
	channel *Channel
}

// Declare declares exchanges, then queues, then bindings. A failed
// declaration does not stop the others: the channel is reopened and the
// errors are joined in the result.
//
// Server-named queues and the default and amq.* exchanges are skipped,
// the broker owns them.
func (d *Declarer) Declare(ctx context.Context, defs *definitions.VirtualHostDefinitionSet) (DeclarationSummary, error) {
	var summary DeclarationSummary
	if defs == nil {
		return summary, errors.New("empty definition set")
	}

	var errs []error
	run := func(kind, name string, declare func(ch Channeler) error) bool {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return false
		}
		if err := declare(d.channel); err != nil {
			logger.Warn("declaration failed", "kind", kind, "name", name, "err", err)
			errs = append(errs, fmt.Errorf("%s %q: %w", kind, name, err))
			if rerr := d.reopen(ctx); rerr != nil {
				errs = append(errs, rerr)
			}
			return false
		}
		logger.Debug("declared", "kind", kind, "name", name)
		return true
	}

	for _, e := range defs.Exchanges {
		if isBrokerOwnedExchange(e.Name) {
			summary.Skipped++
			continue
		}
		kind := e.Type
		if kind == "" {
			kind = defaultExchangeType
		}
		if run("exchange", e.Name, func(ch Channeler) error {
			return ch.ExchangeDeclare(e.Name, kind, e.Durable, e.AutoDelete, e.Internal, false, toTable(e.Arguments))
		}) {
			summary.Exchanges++
		}
	}

	for _, q := range defs.Queues {
		if q.IsServerNamed() {
			summary.Skipped++
			continue
		}
		if run("queue", q.Name, func(ch Channeler) error {
			_, err := ch.QueueDeclare(q.Name, q.Durable, q.AutoDelete, false, false, toTable(q.Arguments))
			return err
		}) {
			summary.Queues++
		}
	}

	for _, b := range defs.Bindings {
		if b.Source == "" {
			// every queue is bound to the default exchange implicitly
			summary.Skipped++
			continue
		}
		name := b.Source + " -> " + b.Destination
		if run("binding", name, func(ch Channeler) error {
			if b.DestinationType == definitions.BindingDestinationExchange {
				return ch.ExchangeBind(b.Destination, b.RoutingKey, b.Source, false, toTable(b.Arguments))
			}
			return ch.QueueBind(b.Destination, b.RoutingKey, b.Source, false, toTable(b.Arguments))
		}) {
			summary.Bindings++
		}
	}

	return summary, errors.Join(errs...)
}

func (d *Declarer) reopen(ctx context.Context) error {
	_ = d.channel.Close()
	d.client.mu.Lock()
	conn := d.client.connection
	d.client.mu.Unlock()
	if conn == nil || conn.IsClosed() {
		return errNotConnected
	}
	return d.channel.Connect(ctx, conn)
}

func (d *Declarer) Close() error {
	return d.channel.Close()
}

func isBrokerOwnedExchange(name string) bool {
	return name == "" || strings.HasPrefix(name, "amq.")
}

// toTable converts decoded JSON or TOML arguments to an AMQP field table.
// JSON numbers arrive as float64, integral ones become int64 because the
// broker rejects floats for arguments such as x-max-length.
func toTable(args map[string]any) amqp.Table {
	if len(args) == 0 {
		return nil
	}
	t := make(amqp.Table, len(args))
	for k, v := range args {
		t[k] = toFieldValue(v)
	}
	return t
}

func toFieldValue(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < math.MaxInt64 {
			return int64(x)
		}
		return x
	case int:
		return int64(x)
	case map[string]any:
		return toTable(x)
	case definitions.XArguments:
		return toTable(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = toFieldValue(e)
		}
		return out
	default:
		return v
	}
}
