package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"hatbazar/internal/demand-service/core/domain/dto"
	"hatbazar/internal/demand-service/core/ports"
	"hatbazar/internal/mylogger"
)

type DemandHandler struct {
	demandService ports.IDemandService
	log           mylogger.Logger
}

func NewDemandHandler(ds ports.IDemandService, log mylogger.Logger) *DemandHandler {
	return &DemandHandler{
		demandService: ds,
		log:           log,
	}
}

func (dh *DemandHandler) CreateDemand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.CreateDemandRequest{}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := dh.demandService.CreateDemand(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

func (dh *DemandHandler) NearbyDemands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.NearbyDemandsRequest{}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := dh.demandService.FindNearestPending(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (dh *DemandHandler) MyDemands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		if username == "" {
			JsonError(w, http.StatusBadRequest, errors.New("username is required"))
			return
		}

		res, err := dh.demandService.ListByRequester(username)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
