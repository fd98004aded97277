package ports

import (
	"context"

	messagebrokerdto "hatbazar/internal/demand-service/core/domain/message_broker_dto"
)

type INotificationBroker interface {
	Close() error
	PublishDemandNotification(ctx context.Context, msg messagebrokerdto.DemandNotification) error
}
