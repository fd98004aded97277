package ports

import (
	"hatbazar/internal/demand-service/core/domain/dto"
	"hatbazar/internal/demand-service/core/geo"
)

type IDemandService interface {
	CreateDemand(req dto.CreateDemandRequest) (dto.CreateDemandResponse, error)
	FindNearestPending(req dto.NearbyDemandsRequest) ([]dto.NearbyDemand, error)
	ListByRequester(username string) ([]dto.DemandSummary, error)
}

type IOrderService interface {
	AcceptOrder(demandId, vendorId string) (dto.AcceptOrderResponse, error)
	DeliverOrder(demandId, vendorId string, location geo.Coordinate) (dto.DeliverOrderResponse, error)
	VendorOrders(vendorId string) ([]dto.VendorOrderSummary, error)
}
