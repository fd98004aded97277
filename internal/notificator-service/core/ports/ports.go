package ports

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ConsumeOptions struct {
	Prefetch     int
	AutoAck      bool
	QueueDurable bool
}

type INotificationConsumer interface {
	Close() error
	Consume(ctx context.Context, queueName, bindingKey string, opts ConsumeOptions) (<-chan amqp.Delivery, error)
}

type IMailer interface {
	Send(to, subject, body string) error
}
