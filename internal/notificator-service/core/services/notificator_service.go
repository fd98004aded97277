package services

import (
	"context"
	"encoding/json"
	"fmt"

	"hatbazar/internal/mylogger"
	"hatbazar/internal/notificator-service/core/domain/dto"
	"hatbazar/internal/notificator-service/core/ports"
)

const (
	queueName  = "demand_notifications"
	bindingKey = "demand.notification.*"
)

// NotificatorService turns demand lifecycle events into email. A bad
// payload is dropped (acked) so it cannot poison the queue; a mailer
// failure is nacked with requeue.
type NotificatorService struct {
	ctx    context.Context
	mylog  mylogger.Logger
	broker ports.INotificationConsumer
	mailer ports.IMailer
}

func NewNotificatorService(ctx context.Context,
	mylog mylogger.Logger,
	broker ports.INotificationConsumer,
	mailer ports.IMailer,
) *NotificatorService {
	return &NotificatorService{
		ctx:    ctx,
		mylog:  mylog,
		broker: broker,
		mailer: mailer,
	}
}

// Run consumes until the context is cancelled.
func (ns *NotificatorService) Run() error {
	log := ns.mylog.Action("consume_notifications")

	msgCh, err := ns.broker.Consume(ns.ctx, queueName, bindingKey, ports.ConsumeOptions{
		Prefetch:     1,
		AutoAck:      false,
		QueueDurable: true,
	})
	if err != nil {
		log.Error("cannot start consuming", err)
		return err
	}

	for msg := range msgCh {
		var notification dto.DemandNotification
		if err := json.Unmarshal(msg.Body, &notification); err != nil {
			log.Error("failed to unmarshal notification", err)
			_ = msg.Ack(false)
			continue
		}

		if err := ns.Handle(notification); err != nil {
			log.With("correlation_id", notification.CorrelationId).Error("failed to send email", err)
			_ = msg.Nack(false, true)
			continue
		}

		_ = msg.Ack(false)
		log.With("correlation_id", notification.CorrelationId).Info("notification delivered")
	}
	return nil
}

// Handle renders and sends one notification.
func (ns *NotificatorService) Handle(n dto.DemandNotification) error {
	if n.Recipient == "" {
		// Nothing to do, the requester left no address.
		return nil
	}
	subject, body, err := Render(n)
	if err != nil {
		return err
	}
	return ns.mailer.Send(n.Recipient, subject, body)
}

// Render produces the subject and plain-text body for a notification.
func Render(n dto.DemandNotification) (string, string, error) {
	switch n.Type {
	case dto.TypeDemandAccepted:
		subject := fmt.Sprintf("Your demand was accepted by %s", n.BusinessName)
		body := fmt.Sprintf(
			"Hi %s,\n\n%s from %s accepted your demand %s and is on the way.\n",
			n.Username, n.VendorName, n.BusinessName, n.DemandId,
		)
		return subject, body, nil
	case dto.TypeDemandDelivered:
		subject := fmt.Sprintf("Your demand was delivered by %s", n.BusinessName)
		body := fmt.Sprintf(
			"Hi %s,\n\n%s from %s delivered your demand %s (%.1f meters from your location).\n",
			n.Username, n.VendorName, n.BusinessName, n.DemandId, n.DistanceM,
		)
		return subject, body, nil
	default:
		return "", "", fmt.Errorf("unknown notification type %q", n.Type)
	}
}
