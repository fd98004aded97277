package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"hatbazar/internal/demand-service/core/domain/dto"
	"hatbazar/internal/demand-service/core/domain/model"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/demand-service/core/myerrors"
	"hatbazar/internal/demand-service/core/ports"
	"hatbazar/internal/mylogger"
)

const (
	DefaultNearestRadiusMeters = 5000
	DefaultNearestLimit        = 5

	repoTimeout       = 15 * time.Second
	classifierTimeout = 10 * time.Second
)

type DemandService struct {
	ctx        context.Context
	mylog      mylogger.Logger
	demandRepo ports.IDemandRepo
	classifier ports.ITagClassifier

	nearestRadiusMeters float64
	nearestLimit        int
}

func NewDemandService(ctx context.Context,
	log mylogger.Logger,
	demandRepo ports.IDemandRepo,
	classifier ports.ITagClassifier,
	nearestRadiusMeters float64,
	nearestLimit int,
) ports.IDemandService {
	if nearestRadiusMeters <= 0 {
		nearestRadiusMeters = DefaultNearestRadiusMeters
	}
	if nearestLimit <= 0 {
		nearestLimit = DefaultNearestLimit
	}
	return &DemandService{
		ctx:                 ctx,
		mylog:               log,
		demandRepo:          demandRepo,
		classifier:          classifier,
		nearestRadiusMeters: nearestRadiusMeters,
		nearestLimit:        nearestLimit,
	}
}

// CreateDemand validates the request, blocks on tag classification and
// only then persists. No row exists for a demand whose classification
// failed and that carried no manual tags.
func (ds *DemandService) CreateDemand(req dto.CreateDemandRequest) (dto.CreateDemandResponse, error) {
	log := ds.mylog.Action("CreateDemand")

	if err := validateCreateDemand(req); err != nil {
		return dto.CreateDemandResponse{}, err
	}

	origin := geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}

	text := ""
	if req.Text != nil {
		text = *req.Text
	}
	photo := ""
	if req.Photo != nil {
		photo = *req.Photo
	}

	ctx, cancel := context.WithTimeout(ds.ctx, classifierTimeout)
	defer cancel()

	tags, err := ds.classifier.GenerateTags(ctx, text, photo)
	if err != nil {
		log.Warn("classifier call failed", "err", err.Error())
		tags = nil
	}
	if len(tags) == 0 {
		// Manual tags are the fallback, not an override.
		tags = req.Tags
	}
	if len(tags) == 0 {
		return dto.CreateDemandResponse{}, myerrors.ErrTaggingFailed
	}

	m := model.Demand{
		Username:    *req.Username,
		Address:     *req.Address,
		Origin:      origin,
		Description: text,
		Tags:        tags,
		Status:      model.StatusPending,
	}
	if req.Email != nil {
		m.Email = *req.Email
	}

	ctx, cancel = context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	demandId, err := ds.demandRepo.Create(ctx, m)
	if err != nil {
		log.Error("cannot create demand", err)
		return dto.CreateDemandResponse{}, err
	}

	log.Info("demand created", "demand-id", demandId, "username", m.Username, "tags", tags)
	return dto.CreateDemandResponse{
		Message:  "Demand created successfully",
		DemandId: demandId,
		Tags:     tags,
		Status:   model.StatusPending,
	}, nil
}

// FindNearestPending runs the combined geo + status query. Radius and
// limit default to the configured values when omitted.
func (ds *DemandService) FindNearestPending(req dto.NearbyDemandsRequest) ([]dto.NearbyDemand, error) {
	log := ds.mylog.Action("FindNearestPending")

	if err := validateLatLng(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	origin := geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}

	radius := ds.nearestRadiusMeters
	if req.MaxRadiusMeters != nil && *req.MaxRadiusMeters > 0 {
		radius = *req.MaxRadiusMeters
	}
	limit := ds.nearestLimit
	if req.Limit != nil && *req.Limit > 0 {
		limit = *req.Limit
	}

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	near, err := ds.demandRepo.FindNearestPending(ctx, origin, radius, limit)
	if err != nil {
		log.Error("nearest query failed", err)
		return nil, err
	}

	res := make([]dto.NearbyDemand, 0, len(near))
	for _, n := range near {
		res = append(res, dto.NearbyDemand{
			DemandId:       n.Demand.DemandId,
			Username:       n.Demand.Username,
			Address:        n.Demand.Address,
			Latitude:       n.Demand.Origin.Latitude,
			Longitude:      n.Demand.Origin.Longitude,
			Status:         n.Demand.Status,
			Text:           n.Demand.Description,
			Tags:           n.Demand.Tags,
			DistanceMeters: math.Round(n.DistanceMeters*100) / 100,
		})
	}
	return res, nil
}

func (ds *DemandService) ListByRequester(username string) ([]dto.DemandSummary, error) {
	log := ds.mylog.Action("ListByRequester")

	if username == "" {
		return nil, fmt.Errorf("invalid username: %w", myerrors.ErrEmptyField)
	}

	ctx, cancel := context.WithTimeout(ds.ctx, repoTimeout)
	defer cancel()

	demands, err := ds.demandRepo.ListByUsername(ctx, username)
	if err != nil {
		log.Error("cannot list demands", err)
		return nil, err
	}

	res := make([]dto.DemandSummary, 0, len(demands))
	for _, d := range demands {
		s := dto.DemandSummary{
			DemandId:     d.DemandId,
			Address:      d.Address,
			Latitude:     d.Origin.Latitude,
			Longitude:    d.Origin.Longitude,
			Status:       d.Status,
			Text:         d.Description,
			Tags:         d.Tags,
			VendorName:   d.VendorName,
			BusinessName: d.BusinessName,
			CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		}
		if d.Status == model.StatusDelivered {
			s.DeliveredAt = d.DeliveredAt.Format(time.RFC3339)
			s.DeliveryMeters = d.DeliveryDistanceM
		}
		res = append(res, s)
	}
	return res, nil
}
