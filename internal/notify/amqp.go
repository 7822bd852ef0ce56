package notify

import (
	"context"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "transfer_topic"

// AMQPPublisher publishes transfer events to a durable topic exchange.
type AMQPPublisher struct {
	ch *amqp.Channel
}

func NewAMQPPublisher(conn *amqp.Connection) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	err = ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, err
	}

	return &AMQPPublisher{ch: ch}, nil
}

func (p *AMQPPublisher) TransferAccepted(ctx context.Context, e Event) error {
	return p.publish(ctx, "transfer.accepted", e)
}

func (p *AMQPPublisher) TransferDeclined(ctx context.Context, e Event) error {
	return p.publish(ctx, "transfer.declined", e)
}

func (p *AMQPPublisher) publish(ctx context.Context, routingKey string, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (p *AMQPPublisher) Close() error {
	return p.ch.Close()
}
