package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"reserva-go/internal/domain/reservation"
	"reserva-go/pkg/logger"
)

// Publisher implements the reservation event sink on top of a durable
// RabbitMQ queue. Every publish is best effort, a broker outage must never
// fail a booking that is already committed.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  logger.Logger
}

func NewPublisher(url string, log logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(QueueReservationEvents, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) ReservationConfirmed(ctx context.Context, r *reservation.Reservation) {
	p.publish(ctx, TypeConfirmed, r)
}

func (p *Publisher) ReservationCheckedIn(ctx context.Context, r *reservation.Reservation) {
	p.publish(ctx, TypeCheckedIn, r)
}

func (p *Publisher) ReservationCancelled(ctx context.Context, r *reservation.Reservation) {
	p.publish(ctx, TypeCancelled, r)
}

func (p *Publisher) publish(ctx context.Context, eventType string, r *reservation.Reservation) {
	ev := Event{
		Type:            eventType,
		ReservationID:   r.ID,
		ReservationCode: r.ReservationCode,
		FullName:        r.FullName,
		Email:           r.Email,
		Phone:           r.Phone,
		UnitName:        r.UnitName,
		AreaName:        r.AreaName,
		ReservationDate: r.ReservationDate,
		People:          r.People,
		Kids:            r.Kids,
		OccurredAt:      time.Now().UTC(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.InternalError("queue: marshal event", err, "type", eventType, "reservation_id", r.ID)
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", QueueReservationEvents, false, false, pub); err != nil {
		p.log.InternalError("queue: publish event", err, "type", eventType, "reservation_id", r.ID)
	}
}
