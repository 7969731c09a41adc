package rabbit

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
)

type Consumer struct {
	ch     *amqp.Channel
	queue  string
	logger observability.Logger
}

// NewConsumer declares queue and binds it to the booking exchange for keys.
func NewConsumer(conn *amqp.Connection, queue string, logger observability.Logger, keys ...string) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		keys = []string{KeyBookingConfirmed}
	}
	for _, key := range keys {
		if err := ch.QueueBind(queue, key, Exchange, false, nil); err != nil {
			return nil, err
		}
	}
	if err := ch.Qos(16, 0, false); err != nil {
		return nil, err
	}
	return &Consumer{ch: ch, queue: queue, logger: logger}, nil
}

func (c *Consumer) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
}

type BookingHandler func(ctx context.Context, messageID string, record domain.Record) error

// Run feeds confirmed bookings to handle until ctx ends. Undecodable messages
// are dropped; handler failures are requeued once.
func (c *Consumer) Run(ctx context.Context, handle BookingHandler) error {
	deliveries, err := c.Consume(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			var record domain.Record
			if err := json.Unmarshal(d.Body, &record); err != nil {
				c.logger.WithField("message_id", d.MessageId).WithError(err).Error("dropping malformed booking event")
				d.Nack(false, false)
				continue
			}
			if err := handle(ctx, d.MessageId, record); err != nil {
				c.logger.WithField("booking_id", record.ID).WithError(err).Error("failed to handle booking event")
				d.Nack(false, !d.Redelivered)
				continue
			}
			d.Ack(false)
		}
	}
}

func (c *Consumer) Close() error {
	return c.ch.Close()
}
