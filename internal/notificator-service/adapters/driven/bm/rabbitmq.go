package bm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hatbazar/internal/config"
	"hatbazar/internal/mylogger"
	"hatbazar/internal/notificator-service/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

const demandExchangeName = "demand_topic" // topic

type RabbitMQ struct {
	ctx  context.Context
	cfg  config.RabbitMqconfig
	log  mylogger.Logger
	conn *amqp.Connection
	ch   *amqp.Channel
	mu   *sync.Mutex
}

var _ ports.INotificationConsumer = (*RabbitMQ)(nil)

func New(ctx context.Context, rabbitmqCfg config.RabbitMqconfig, log mylogger.Logger) (ports.INotificationConsumer, error) {
	r := &RabbitMQ{
		ctx: ctx,
		cfg: rabbitmqCfg,
		log: log,
		mu:  &sync.Mutex{},
	}
	if err := r.connect(); err != nil {
		return nil, fmt.Errorf("rabbit connect: %w", err)
	}
	return r, nil
}

func (r *RabbitMQ) Consume(ctx context.Context, queueName, bindingKey string, opts ports.ConsumeOptions) (<-chan amqp.Delivery, error) {
	if !r.IsAlive() {
		return nil, errors.New("amqp closed")
	}
	if err := r.ch.ExchangeDeclare(demandExchangeName, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	_, err := r.ch.QueueDeclare(
		queueName,
		opts.QueueDurable,
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	if err := r.ch.QueueBind(
		queueName,
		bindingKey,
		demandExchangeName,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}
	if opts.Prefetch > 0 {
		if err := r.ch.Qos(opts.Prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("qos: %w", err)
		}
	}
	deliveries, err := r.ch.Consume(
		queueName,
		"",           // consumer tag
		opts.AutoAck, // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}
	out := make(chan amqp.Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-deliveries:
				if !ok {
					return
				}
				out <- m
			}
		}
	}()
	return out, nil
}

func (r *RabbitMQ) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil || r.conn.IsClosed() {
		return false
	}
	if r.ch == nil || r.ch.IsClosed() {
		return false
	}
	return true
}

func (r *RabbitMQ) Close() error {
	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close channel: %w", err)
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}
	}
	return nil
}

func (r *RabbitMQ) connect() error {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		r.cfg.User, r.cfg.Password, r.cfg.Host, r.cfg.Port, r.cfg.VHost,
	)
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.conn = conn
	r.ch = ch
	return nil
}
