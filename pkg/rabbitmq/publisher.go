package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tricommerce/internal/event"
)

const publishTimeout = 5 * time.Second

// Publisher sends domain events as persistent JSON messages to one queue.
type Publisher struct {
	pool      *ChannelPool
	queueName string
}

func NewPublisher(pool *ChannelPool, queueName string) *Publisher {
	return &Publisher{pool: pool, queueName: queueName}
}

func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := p.pool.Get()
	if err != nil {
		return fmt.Errorf("get channel: %w", err)
	}
	defer p.pool.Put(ch)

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         e.Action,
		Timestamp:    e.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Action, err)
	}
	return nil
}
