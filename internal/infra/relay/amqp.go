package relay

import (
	"context"
	"time"

	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultConfirmTimeout = 5 * time.Second

var (
	errPublishNacked   = errs.New("broker rejected message")
	errConfirmTimedOut = errs.New("timed out waiting for publisher confirm")
)

type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type confirmChannel interface {
	publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)
	Close() error
}

type amqpChannel struct {
	ch *amqp.Channel
}

func (c amqpChannel) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
	dc, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}
	return dc, nil
}

func (c amqpChannel) Close() error {
	return c.ch.Close()
}

// AMQPPublisher publishes persistent JSON messages to a durable topic exchange.
// The channel runs in confirm mode; Publish returns only after the broker acks.
type AMQPPublisher struct {
	conn           *amqp.Connection
	ch             confirmChannel
	exchange       string
	clock          clock.Clock
	confirmTimeout time.Duration
}

func DialAMQP(url, exchange string, clk clock.Clock) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errs.Wrap(err, "failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "failed to open channel")
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errs.Wrapf(err, "failed to declare exchange %s", exchange)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errs.Wrap(err, "failed to enable publisher confirms")
	}

	return newAMQPPublisher(conn, amqpChannel{ch: ch}, exchange, clk), nil
}

func newAMQPPublisher(conn *amqp.Connection, ch confirmChannel, exchange string, clk clock.Clock) *AMQPPublisher {
	return &AMQPPublisher{
		conn:           conn,
		ch:             ch,
		exchange:       exchange,
		clock:          clk,
		confirmTimeout: defaultConfirmTimeout,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg Message) error {
	confirm, err := p.ch.publish(ctx, p.exchange, msg.RoutingKey, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.Kind,
		Timestamp:    p.clock.Now().UTC(),
		Body:         msg.Body,
	})
	if err != nil {
		return errs.Wrapf(err, "failed to publish message %s", msg.ID)
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	acked, err := confirm.WaitContext(waitCtx)
	if err != nil {
		if errs.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return errs.Wrapf(errConfirmTimedOut, "message %s", msg.ID)
		}
		return errs.Wrapf(err, "failed to confirm message %s", msg.ID)
	}
	if !acked {
		return errs.Wrapf(errPublishNacked, "message %s", msg.ID)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	chErr := p.ch.Close()
	var connErr error
	if p.conn != nil {
		connErr = p.conn.Close()
	}
	if chErr != nil {
		return chErr
	}
	return connErr
}
