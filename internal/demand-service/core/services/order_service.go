package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"hatbazar/internal/demand-service/core/domain/dto"
	"hatbazar/internal/demand-service/core/domain/model"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/demand-service/core/myerrors"
	"hatbazar/internal/demand-service/core/ports"
	"hatbazar/internal/mylogger"

	messagebrokerdto "hatbazar/internal/demand-service/core/domain/message_broker_dto"
	websocketdto "hatbazar/internal/demand-service/core/domain/websocket_dto"

	"github.com/google/uuid"
)

const notifyTimeout = 5 * time.Second

// OrderService drives the accepted/delivered transitions. The demand
// row is the source of truth; the vendor-side summary is written after
// the demand update succeeds and is allowed to lag on failure.
type OrderService struct {
	ctx        context.Context
	mylog      mylogger.Logger
	demandRepo ports.IDemandRepo
	vendorRepo ports.IVendorRepo
	broker     ports.INotificationBroker
	dispatcher ports.INotifyWebsocket

	geofenceRadiusMeters float64
}

func NewOrderService(ctx context.Context,
	log mylogger.Logger,
	demandRepo ports.IDemandRepo,
	vendorRepo ports.IVendorRepo,
	broker ports.INotificationBroker,
	dispatcher ports.INotifyWebsocket,
	geofenceRadiusMeters float64,
) ports.IOrderService {
	if geofenceRadiusMeters <= 0 {
		geofenceRadiusMeters = 50
	}
	return &OrderService{
		ctx:                  ctx,
		mylog:                log,
		demandRepo:           demandRepo,
		vendorRepo:           vendorRepo,
		broker:               broker,
		dispatcher:           dispatcher,
		geofenceRadiusMeters: geofenceRadiusMeters,
	}
}

// AcceptOrder performs the guarded pending -> accepted transition.
// The status check and the status write are one conditional update, so
// two racing vendors produce exactly one winner.
func (ors *OrderService) AcceptOrder(demandId, vendorId string) (dto.AcceptOrderResponse, error) {
	log := ors.mylog.Action("AcceptOrder")

	if demandId == "" || vendorId == "" {
		return dto.AcceptOrderResponse{}, fmt.Errorf("invalid id: %w", myerrors.ErrEmptyField)
	}

	ctx, cancel := context.WithTimeout(ors.ctx, repoTimeout)
	defer cancel()

	vendor, err := ors.vendorRepo.GetById(ctx, vendorId)
	if err != nil {
		return dto.AcceptOrderResponse{}, err
	}

	now := time.Now()

	ctx, cancel = context.WithTimeout(ors.ctx, repoTimeout)
	defer cancel()

	demand, err := ors.demandRepo.AcceptPending(ctx, demandId, vendor, now)
	if err != nil {
		if errors.Is(err, myerrors.ErrDemandNotFound) {
			return dto.AcceptOrderResponse{}, ors.disambiguateAccept(demandId)
		}
		log.Error("accept update failed", err)
		return dto.AcceptOrderResponse{}, err
	}

	// Vendor-side mirror. The demand update already stands; a failure
	// here is logged and left to read-repair, never rolled back.
	ctx, cancel = context.WithTimeout(ors.ctx, repoTimeout)
	defer cancel()

	err = ors.vendorRepo.AppendOrder(ctx, model.VendorOrder{
		VendorId:         vendorId,
		DemandId:         demandId,
		CustomerUsername: demand.Username,
		CustomerAddress:  demand.Address,
		Status:           model.StatusAccepted,
		AcceptedAt:       now,
	})
	if err != nil {
		log.Error("vendor order mirror write failed, demand remains accepted", err,
			"demand-id", demandId, "vendor-id", vendorId)
	}

	notification := ors.notifyRequester(demand, vendor, messagebrokerdto.TypeDemandAccepted, 0)
	ors.pushStatusUpdate(demand.Username, demandId, model.StatusAccepted, vendor, 0)

	log.Info("order accepted", "demand-id", demandId, "vendor-id", vendorId, "notification", notification)
	return dto.AcceptOrderResponse{
		Message:      "Order accepted successfully",
		DemandId:     demandId,
		VendorId:     vendorId,
		Status:       model.StatusAccepted,
		Notification: notification,
	}, nil
}

// disambiguateAccept tells a vanished demand apart from a lost race so
// the caller can explain "someone else took it first".
func (ors *OrderService) disambiguateAccept(demandId string) error {
	ctx, cancel := context.WithTimeout(ors.ctx, repoTimeout)
	defer cancel()

	status, err := ors.demandRepo.GetStatus(ctx, demandId)
	if err != nil {
		return myerrors.ErrDemandNotFound
	}
	if status != model.StatusPending {
		return myerrors.ErrAlreadyAccepted
	}
	return myerrors.ErrDemandNotFound
}

// DeliverOrder performs the guarded accepted -> delivered transition
// behind the proximity gate. Lookup misses, not-yet-accepted demands
// and other vendors' orders are all one ErrDemandNotFound.
func (ors *OrderService) DeliverOrder(demandId, vendorId string, location geo.Coordinate) (dto.DeliverOrderResponse, error) {
	log := ors.mylog.Action("DeliverOrder")

	if demandId == "" || vendorId == "" {
		return dto.DeliverOrderResponse{}, fmt.Errorf("invalid id: %w", myerrors.ErrEmptyField)
	}
	if err := location.Validate(); err != nil {
		return dto.DeliverOrderResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ors.ctx, repoTimeout)
	defer cancel()

	demand, err := ors.demandRepo.FindAcceptedBy(ctx, demandId, vendorId)
	if err != nil {
		return dto.DeliverOrderResponse{}, err
	}

	// The gate measures against the demand origin, never the vendor's
	// registered location.
	distance, err := geo.Distance(demand.Origin, location)
	if err != nil {
		return dto.DeliverOrderResponse{}, err
	}
	if !geo.WithinRadius(demand.Origin, location, ors.geofenceRadiusMeters) {
		log.Warn("geofence violation",
			"demand-id", demandId, "vendor-id", vendorId, "distance-m", distance)
		return dto.DeliverOrderResponse{}, &myerrors.GeofenceError{
			RequiredMeters: ors.geofenceRadiusMeters,
			ActualMeters:   math.Round(distance*100) / 100,
			Current:        location,
			Target:         demand.Origin,
		}
	}

	now := time.Now()
	rounded := math.Round(distance*100) / 100

	ctx, cancel = context.WithTimeout(ors.ctx, repoTimeout)
	defer cancel()

	// Conditional on the same triple as the lookup, so a concurrent
	// second delivery loses with not-found.
	if err := ors.demandRepo.MarkDelivered(ctx, demandId, vendorId, location, rounded, now); err != nil {
		return dto.DeliverOrderResponse{}, err
	}

	ctx, cancel = context.WithTimeout(ors.ctx, repoTimeout)
	defer cancel()

	if err := ors.vendorRepo.MarkOrderDelivered(ctx, vendorId, demandId, now, rounded); err != nil {
		log.Error("vendor order mirror update failed, demand remains delivered", err,
			"demand-id", demandId, "vendor-id", vendorId)
	}

	vendor, err := ors.vendorRepo.GetById(ctx, vendorId)
	if err != nil {
		vendor = model.Vendor{VendorId: vendorId}
	}
	ors.notifyRequester(demand, vendor, messagebrokerdto.TypeDemandDelivered, rounded)
	ors.pushStatusUpdate(demand.Username, demandId, model.StatusDelivered, vendor, rounded)

	log.Info("order delivered", "demand-id", demandId, "vendor-id", vendorId, "distance-m", rounded)
	return dto.DeliverOrderResponse{
		Message:                "Order delivered successfully",
		DemandId:               demandId,
		Status:                 model.StatusDelivered,
		DeliveredAt:            now.Format(time.RFC3339),
		DeliveryDistanceMeters: rounded,
		DeliveryLocation:       location,
	}, nil
}

func (ors *OrderService) VendorOrders(vendorId string) ([]dto.VendorOrderSummary, error) {
	log := ors.mylog.Action("VendorOrders")

	if vendorId == "" {
		return nil, fmt.Errorf("invalid id: %w", myerrors.ErrEmptyField)
	}

	ctx, cancel := context.WithTimeout(ors.ctx, repoTimeout)
	defer cancel()

	orders, err := ors.vendorRepo.ListOrders(ctx, vendorId)
	if err != nil {
		log.Error("cannot list vendor orders", err)
		return nil, err
	}

	res := make([]dto.VendorOrderSummary, 0, len(orders))
	for _, o := range orders {
		s := dto.VendorOrderSummary{
			DemandId:         o.DemandId,
			CustomerUsername: o.CustomerUsername,
			CustomerAddress:  o.CustomerAddress,
			Status:           o.Status,
			AcceptedAt:       o.AcceptedAt.Format(time.RFC3339),
		}
		if o.Status == model.StatusDelivered {
			s.DeliveredAt = o.DeliveredAt.Format(time.RFC3339)
			s.DeliveryDistance = o.DeliveryDistance
		}
		res = append(res, s)
	}
	return res, nil
}

// notifyRequester publishes the email notification, best effort. The
// returned soft status is reported on the response, never an error.
func (ors *OrderService) notifyRequester(demand model.Demand, vendor model.Vendor, eventType string, distanceM float64) string {
	log := ors.mylog.Action("notifyRequester")

	if demand.Email == "" {
		return dto.NotificationNoAddress
	}
	if ors.broker == nil {
		return dto.NotificationFailed
	}

	msg := messagebrokerdto.DemandNotification{
		Type:          eventType,
		DemandId:      demand.DemandId,
		Recipient:     demand.Email,
		Username:      demand.Username,
		VendorName:    vendor.Name,
		BusinessName:  vendor.BusinessName,
		DistanceM:     distanceM,
		Timestamp:     time.Now().Format(time.RFC3339),
		CorrelationId: uuid.NewString(),
	}

	ctx, cancel := context.WithTimeout(ors.ctx, notifyTimeout)
	defer cancel()

	if err := ors.broker.PublishDemandNotification(ctx, msg); err != nil {
		log.Error("failed to publish notification", err, "demand-id", demand.DemandId)
		return dto.NotificationFailed
	}
	return dto.NotificationSent
}

func (ors *OrderService) pushStatusUpdate(username, demandId, status string, vendor model.Vendor, distanceM float64) {
	if ors.dispatcher == nil {
		return
	}

	data := websocketdto.DemandStatusUpdate{
		DemandId: demandId,
		Status:   status,
		VendorInfo: websocketdto.VendorInfo{
			VendorId:     vendor.VendorId,
			Name:         vendor.Name,
			BusinessName: vendor.BusinessName,
		},
		DistanceMeters: distanceM,
		Timestamp:      time.Now().Format(time.RFC3339),
		CorrelationId:  uuid.NewString(),
	}

	payload, err := json.Marshal(data)
	if err != nil {
		ors.mylog.Action("pushStatusUpdate").Error("cannot marshal event", err)
		return
	}

	ors.dispatcher.WriteToUser(username, websocketdto.Event{
		Type: websocketdto.TypeDemandStatusUpdate,
		Data: payload,
	})
}
