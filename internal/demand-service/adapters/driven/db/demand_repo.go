package db

import (
	"context"
	"errors"
	"time"

	"hatbazar/internal/demand-service/core/domain/model"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/demand-service/core/myerrors"
	"hatbazar/internal/demand-service/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DemandRepo struct {
	db *DB
}

func NewDemandRepo(db *DB) ports.IDemandRepo {
	return &DemandRepo{
		db: db,
	}
}

func (dr *DemandRepo) Create(ctx context.Context, d model.Demand) (string, error) {
	q := `
	INSERT INTO demands(username, email, address, latitude, longitude, description, tags, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
	RETURNING demand_id`

	conn := dr.db.GetConn()

	demandId := ""
	err := conn.QueryRow(ctx, q,
		d.Username,
		d.Email,
		d.Address,
		d.Origin.Latitude,
		d.Origin.Longitude,
		d.Description,
		d.Tags,
	).Scan(&demandId)
	if err != nil {
		return "", &myerrors.PersistenceError{Op: "demands.create", Err: err}
	}
	return demandId, nil
}

// FindNearestPending combines the status filter and the geo query in a
// single statement so the returned distances always describe rows that
// were pending when measured. Points are built longitude-first, as
// PostGIS requires.
func (dr *DemandRepo) FindNearestPending(ctx context.Context, origin geo.Coordinate, radiusMeters float64, limit int) ([]ports.NearDemand, error) {
	q := `
	SELECT demand_id, username, email, address, latitude, longitude, description, tags, status, created_at,
		ST_Distance(
			ST_MakePoint(longitude, latitude)::geography,
			ST_MakePoint($1, $2)::geography
		) AS distance_m
	FROM demands
	WHERE status = 'pending'
		AND ST_DWithin(
			ST_MakePoint(longitude, latitude)::geography,
			ST_MakePoint($1, $2)::geography,
			$3
		)
	ORDER BY distance_m
	LIMIT $4`

	conn := dr.db.GetConn()

	rows, err := conn.Query(ctx, q, origin.Longitude, origin.Latitude, radiusMeters, limit)
	if err != nil {
		return nil, &myerrors.PersistenceError{Op: "demands.nearest", Err: err}
	}
	defer rows.Close()

	var result []ports.NearDemand
	for rows.Next() {
		var (
			d    model.Demand
			dist float64
		)
		err := rows.Scan(
			&d.DemandId,
			&d.Username,
			&d.Email,
			&d.Address,
			&d.Origin.Latitude,
			&d.Origin.Longitude,
			&d.Description,
			&d.Tags,
			&d.Status,
			&d.CreatedAt,
			&dist,
		)
		if err != nil {
			return nil, &myerrors.PersistenceError{Op: "demands.nearest", Err: err}
		}
		result = append(result, ports.NearDemand{Demand: d, DistanceMeters: dist})
	}
	if err := rows.Err(); err != nil {
		return nil, &myerrors.PersistenceError{Op: "demands.nearest", Err: err}
	}
	return result, nil
}

// AcceptPending is the compare-and-swap at the heart of Accept: the
// status check and the write are one UPDATE, so concurrent acceptors
// cannot interleave between a read and a write.
func (dr *DemandRepo) AcceptPending(ctx context.Context, demandId string, vendor model.Vendor, at time.Time) (model.Demand, error) {
	if _, err := uuid.Parse(demandId); err != nil {
		return model.Demand{}, myerrors.ErrDemandNotFound
	}

	q := `
	UPDATE demands
	SET status = 'accepted',
		accepted_by = $2,
		accepted_at = $3,
		vendor_name = $4,
		business_name = $5
	WHERE demand_id = $1 AND status = 'pending'
	RETURNING demand_id, username, email, address, latitude, longitude, description, tags, created_at`

	conn := dr.db.GetConn()

	d := model.Demand{
		Status:       model.StatusAccepted,
		AcceptedBy:   vendor.VendorId,
		AcceptedAt:   at,
		VendorName:   vendor.Name,
		BusinessName: vendor.BusinessName,
	}
	err := conn.QueryRow(ctx, q, demandId, vendor.VendorId, at, vendor.Name, vendor.BusinessName).Scan(
		&d.DemandId,
		&d.Username,
		&d.Email,
		&d.Address,
		&d.Origin.Latitude,
		&d.Origin.Longitude,
		&d.Description,
		&d.Tags,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Demand{}, myerrors.ErrDemandNotFound
		}
		return model.Demand{}, &myerrors.PersistenceError{Op: "demands.accept", Err: err}
	}
	return d, nil
}

func (dr *DemandRepo) GetStatus(ctx context.Context, demandId string) (string, error) {
	if _, err := uuid.Parse(demandId); err != nil {
		return "", myerrors.ErrDemandNotFound
	}

	q := `SELECT status FROM demands WHERE demand_id = $1`

	conn := dr.db.GetConn()

	status := ""
	err := conn.QueryRow(ctx, q, demandId).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", myerrors.ErrDemandNotFound
		}
		return "", &myerrors.PersistenceError{Op: "demands.status", Err: err}
	}
	return status, nil
}

func (dr *DemandRepo) FindAcceptedBy(ctx context.Context, demandId, vendorId string) (model.Demand, error) {
	if _, err := uuid.Parse(demandId); err != nil {
		return model.Demand{}, myerrors.ErrDemandNotFound
	}

	q := `
	SELECT demand_id, username, email, address, latitude, longitude, description, tags, status,
		accepted_by, accepted_at, vendor_name, business_name, created_at
	FROM demands
	WHERE demand_id = $1 AND status = 'accepted' AND accepted_by = $2`

	conn := dr.db.GetConn()

	var d model.Demand
	err := conn.QueryRow(ctx, q, demandId, vendorId).Scan(
		&d.DemandId,
		&d.Username,
		&d.Email,
		&d.Address,
		&d.Origin.Latitude,
		&d.Origin.Longitude,
		&d.Description,
		&d.Tags,
		&d.Status,
		&d.AcceptedBy,
		&d.AcceptedAt,
		&d.VendorName,
		&d.BusinessName,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Demand{}, myerrors.ErrDemandNotFound
		}
		return model.Demand{}, &myerrors.PersistenceError{Op: "demands.find_accepted", Err: err}
	}
	return d, nil
}

// MarkDelivered is conditional on the full (id, accepted, accepted_by)
// triple; a lost race surfaces as not-found, same as the lookup.
func (dr *DemandRepo) MarkDelivered(ctx context.Context, demandId, vendorId string, location geo.Coordinate, distanceMeters float64, at time.Time) error {
	if _, err := uuid.Parse(demandId); err != nil {
		return myerrors.ErrDemandNotFound
	}

	q := `
	UPDATE demands
	SET status = 'delivered',
		delivered_at = $3,
		delivery_latitude = $4,
		delivery_longitude = $5,
		delivery_distance_m = $6
	WHERE demand_id = $1 AND status = 'accepted' AND accepted_by = $2`

	conn := dr.db.GetConn()

	tag, err := conn.Exec(ctx, q, demandId, vendorId, at, location.Latitude, location.Longitude, distanceMeters)
	if err != nil {
		return &myerrors.PersistenceError{Op: "demands.deliver", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return myerrors.ErrDemandNotFound
	}
	return nil
}

func (dr *DemandRepo) ListByUsername(ctx context.Context, username string) ([]model.Demand, error) {
	q := `
	SELECT demand_id, username, email, address, latitude, longitude, description, tags, status,
		vendor_name, business_name, delivered_at, delivery_distance_m, created_at
	FROM demands
	WHERE username = $1
	ORDER BY created_at DESC`

	conn := dr.db.GetConn()

	rows, err := conn.Query(ctx, q, username)
	if err != nil {
		return nil, &myerrors.PersistenceError{Op: "demands.list", Err: err}
	}
	defer rows.Close()

	var result []model.Demand
	for rows.Next() {
		var (
			d           model.Demand
			vendorName  *string
			business    *string
			deliveredAt *time.Time
			deliveryM   *float64
		)
		err := rows.Scan(
			&d.DemandId,
			&d.Username,
			&d.Email,
			&d.Address,
			&d.Origin.Latitude,
			&d.Origin.Longitude,
			&d.Description,
			&d.Tags,
			&d.Status,
			&vendorName,
			&business,
			&deliveredAt,
			&deliveryM,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, &myerrors.PersistenceError{Op: "demands.list", Err: err}
		}
		if vendorName != nil {
			d.VendorName = *vendorName
		}
		if business != nil {
			d.BusinessName = *business
		}
		if deliveredAt != nil {
			d.DeliveredAt = *deliveredAt
		}
		if deliveryM != nil {
			d.DeliveryDistanceM = *deliveryM
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &myerrors.PersistenceError{Op: "demands.list", Err: err}
	}
	return result, nil
}
