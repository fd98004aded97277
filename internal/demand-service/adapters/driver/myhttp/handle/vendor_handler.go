package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"hatbazar/internal/demand-service/core/domain/dto"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/demand-service/core/ports"
	"hatbazar/internal/mylogger"
)

// VendorHandler serves the vendor side of the order lifecycle. The
// vendor id comes from the X-UserId header that the auth middleware
// injects from the verified token, never from the request body.
type VendorHandler struct {
	orderService ports.IOrderService
	log          mylogger.Logger
}

func NewVendorHandler(ors ports.IOrderService, log mylogger.Logger) *VendorHandler {
	return &VendorHandler{
		orderService: ors,
		log:          log,
	}
}

func (vh *VendorHandler) AcceptOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorId := r.Header.Get("X-UserId")
		demandId := r.PathValue("demand_id")
		if demandId == "" {
			JsonError(w, http.StatusBadRequest, errors.New("demand_id is required"))
			return
		}

		res, err := vh.orderService.AcceptOrder(demandId, vendorId)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (vh *VendorHandler) DeliverOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorId := r.Header.Get("X-UserId")
		demandId := r.PathValue("demand_id")
		if demandId == "" {
			JsonError(w, http.StatusBadRequest, errors.New("demand_id is required"))
			return
		}

		req := dto.DeliverOrderRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if req.Latitude == nil || req.Longitude == nil {
			JsonError(w, http.StatusBadRequest, errors.New("latitude and longitude are required"))
			return
		}

		location := geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
		res, err := vh.orderService.DeliverOrder(demandId, vendorId, location)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (vh *VendorHandler) MyOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorId := r.Header.Get("X-UserId")

		res, err := vh.orderService.VendorOrders(vendorId)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
