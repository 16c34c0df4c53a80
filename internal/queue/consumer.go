package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"reserva-go/pkg/logger"
)

// Handler processes one reservation event. A returned error rejects the
// message without requeueing, bad payloads must not loop forever.
type Handler interface {
	HandleReservationEvent(ctx context.Context, ev Event) error
}

// Consumer drains the reservation events queue and feeds the handler. It
// reconnects with backoff and stops when the context is cancelled.
type Consumer struct {
	url     string
	handler Handler
	log     logger.Logger
}

func NewConsumer(url string, handler Handler, log logger.Logger) *Consumer {
	return &Consumer{url: url, handler: handler, log: log}
}

func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("queue: consumer dial failed", "err", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consume(ctx, conn); err != nil && ctx.Err() == nil {
			c.log.Warn("queue: consume loop ended", "err", err)
		}
		_ = conn.Close()
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueReservationEvents, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(QueueReservationEvents, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			var ev Event
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				c.log.Warn("queue: drop malformed event", "err", err)
				_ = d.Nack(false, false)
				continue
			}
			if err := c.handler.HandleReservationEvent(ctx, ev); err != nil {
				c.log.InternalError("queue: handle event", err, "type", ev.Type, "reservation_id", ev.ReservationID)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
