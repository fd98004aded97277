package db

import (
	"context"
	"errors"
	"time"

	"hatbazar/internal/demand-service/core/domain/model"
	"hatbazar/internal/demand-service/core/myerrors"
	"hatbazar/internal/demand-service/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type VendorRepo struct {
	db *DB
}

func NewVendorRepo(db *DB) ports.IVendorRepo {
	return &VendorRepo{
		db: db,
	}
}

func (vr *VendorRepo) GetById(ctx context.Context, vendorId string) (model.Vendor, error) {
	if _, err := uuid.Parse(vendorId); err != nil {
		return model.Vendor{}, myerrors.ErrVendorNotFound
	}

	q := `
	SELECT vendor_id, name, email, business_name, category, latitude, longitude,
		total_orders_accepted, total_orders_delivered, is_active
	FROM vendors
	WHERE vendor_id = $1`

	conn := vr.db.GetConn()

	var v model.Vendor
	err := conn.QueryRow(ctx, q, vendorId).Scan(
		&v.VendorId,
		&v.Name,
		&v.Email,
		&v.BusinessName,
		&v.Category,
		&v.Location.Latitude,
		&v.Location.Longitude,
		&v.TotalOrdersAccepted,
		&v.TotalOrdersDelivered,
		&v.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Vendor{}, myerrors.ErrVendorNotFound
		}
		return model.Vendor{}, &myerrors.PersistenceError{Op: "vendors.get", Err: err}
	}
	return v, nil
}

// AppendOrder writes the summary row and bumps the accepted counter in
// one transaction so the counter never drifts from the rows.
func (vr *VendorRepo) AppendOrder(ctx context.Context, order model.VendorOrder) error {
	conn := vr.db.GetConn()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return &myerrors.PersistenceError{Op: "vendor_orders.append", Err: err}
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
	INSERT INTO vendor_orders(vendor_id, demand_id, customer_username, customer_address, status, accepted_at)
	VALUES ($1, $2, $3, $4, $5, $6)`,
		order.VendorId,
		order.DemandId,
		order.CustomerUsername,
		order.CustomerAddress,
		order.Status,
		order.AcceptedAt,
	)
	if err != nil {
		return &myerrors.PersistenceError{Op: "vendor_orders.append", Err: err}
	}

	_, err = tx.Exec(ctx, `
	UPDATE vendors SET total_orders_accepted = total_orders_accepted + 1 WHERE vendor_id = $1`,
		order.VendorId,
	)
	if err != nil {
		return &myerrors.PersistenceError{Op: "vendor_orders.append", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &myerrors.PersistenceError{Op: "vendor_orders.append", Err: err}
	}
	return nil
}

func (vr *VendorRepo) MarkOrderDelivered(ctx context.Context, vendorId, demandId string, at time.Time, distanceMeters float64) error {
	conn := vr.db.GetConn()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return &myerrors.PersistenceError{Op: "vendor_orders.deliver", Err: err}
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
	UPDATE vendor_orders
	SET status = 'delivered', delivered_at = $3, delivery_distance_m = $4
	WHERE vendor_id = $1 AND demand_id = $2`,
		vendorId, demandId, at, distanceMeters,
	)
	if err != nil {
		return &myerrors.PersistenceError{Op: "vendor_orders.deliver", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return myerrors.ErrDemandNotFound
	}

	_, err = tx.Exec(ctx, `
	UPDATE vendors SET total_orders_delivered = total_orders_delivered + 1 WHERE vendor_id = $1`,
		vendorId,
	)
	if err != nil {
		return &myerrors.PersistenceError{Op: "vendor_orders.deliver", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &myerrors.PersistenceError{Op: "vendor_orders.deliver", Err: err}
	}
	return nil
}

func (vr *VendorRepo) ListOrders(ctx context.Context, vendorId string) ([]model.VendorOrder, error) {
	q := `
	SELECT vendor_id, demand_id, customer_username, customer_address, status,
		accepted_at, delivered_at, delivery_distance_m
	FROM vendor_orders
	WHERE vendor_id = $1
	ORDER BY accepted_at DESC`

	conn := vr.db.GetConn()

	rows, err := conn.Query(ctx, q, vendorId)
	if err != nil {
		return nil, &myerrors.PersistenceError{Op: "vendor_orders.list", Err: err}
	}
	defer rows.Close()

	var result []model.VendorOrder
	for rows.Next() {
		var (
			o           model.VendorOrder
			deliveredAt *time.Time
			deliveryM   *float64
		)
		err := rows.Scan(
			&o.VendorId,
			&o.DemandId,
			&o.CustomerUsername,
			&o.CustomerAddress,
			&o.Status,
			&o.AcceptedAt,
			&deliveredAt,
			&deliveryM,
		)
		if err != nil {
			return nil, &myerrors.PersistenceError{Op: "vendor_orders.list", Err: err}
		}
		if deliveredAt != nil {
			o.DeliveredAt = *deliveredAt
		}
		if deliveryM != nil {
			o.DeliveryDistance = *deliveryM
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &myerrors.PersistenceError{Op: "vendor_orders.list", Err: err}
	}
	return result, nil
}
