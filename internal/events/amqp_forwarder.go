package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPForwarder republishes dispatcher events to a direct exchange, routed by
// event type.
type AMQPForwarder struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	logger   *zap.Logger
}

// DialAMQP connects with retries and declares the exchange.
func DialAMQP(url, exchange string, retries int, delay time.Duration, logger *zap.Logger) (*AMQPForwarder, error) {
	const op = "events.DialAMQP"
	var conn *amqp.Connection
	var err error
	for i := 0; i < retries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		time.Sleep(delay)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := newAMQPForwarder(ch, exchange, logger)
	f.conn = conn
	return f, nil
}

func newAMQPForwarder(ch amqpChannel, exchange string, logger *zap.Logger) *AMQPForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPForwarder{ch: ch, exchange: exchange, logger: logger}
}

// Register subscribes the forwarder to every published type.
func (f *AMQPForwarder) Register(d Dispatcher) {
	for _, t := range AllTypes {
		d.Subscribe(t, f.Forward)
	}
}

// Forward publishes one event.
func (f *AMQPForwarder) Forward(_ context.Context, event Event) error {
	const op = "events.AMQPForwarder.Forward"
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = f.ch.Publish(f.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    event.ID,
		Timestamp:    event.Timestamp,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close releases the channel and connection.
func (f *AMQPForwarder) Close() {
	if f == nil {
		return
	}
	if f.ch != nil {
		_ = f.ch.Close()
	}
	if f.conn != nil {
		_ = f.conn.Close()
	}
}
