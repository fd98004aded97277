package ports

import (
	"context"
	"time"

	"hatbazar/internal/demand-service/core/domain/model"
	"hatbazar/internal/demand-service/core/geo"

	"github.com/jackc/pgx/v5"
)

type IDB interface {
	GetConn() *pgx.Conn
	IsAlive() error
	Close() error
}

// NearDemand annotates a pending demand with its distance from the
// query point, computed inside the same query that filters by status
// so the distances can never refer to stale rows.
type NearDemand struct {
	Demand         model.Demand
	DistanceMeters float64
}

type IDemandRepo interface {
	Create(ctx context.Context, d model.Demand) (string, error)

	// FindNearestPending returns at most limit pending demands within
	// radiusMeters of origin, nearest first.
	FindNearestPending(ctx context.Context, origin geo.Coordinate, radiusMeters float64, limit int) ([]NearDemand, error)

	// AcceptPending flips pending -> accepted in a single conditional
	// update keyed on (demandId, status=pending) and returns the
	// updated demand. myerrors.ErrDemandNotFound when no row matched
	// the condition; the caller disambiguates via GetStatus.
	AcceptPending(ctx context.Context, demandId string, vendor model.Vendor, at time.Time) (model.Demand, error)

	GetStatus(ctx context.Context, demandId string) (string, error)

	// FindAcceptedBy looks a demand up by the full
	// (id, status=accepted, accepted_by=vendorId) triple. Any miss is
	// myerrors.ErrDemandNotFound; which part failed is not disclosed.
	FindAcceptedBy(ctx context.Context, demandId, vendorId string) (model.Demand, error)

	// MarkDelivered flips accepted -> delivered, conditional on the
	// same triple as FindAcceptedBy.
	MarkDelivered(ctx context.Context, demandId, vendorId string, location geo.Coordinate, distanceMeters float64, at time.Time) error

	ListByUsername(ctx context.Context, username string) ([]model.Demand, error)
}

type IVendorRepo interface {
	GetById(ctx context.Context, vendorId string) (model.Vendor, error)

	// AppendOrder records the accepted-order summary and increments
	// the vendor's accepted counter.
	AppendOrder(ctx context.Context, order model.VendorOrder) error

	// MarkOrderDelivered mirrors delivery onto the summary matched by
	// (vendorId, demandId) and increments the delivered counter.
	MarkOrderDelivered(ctx context.Context, vendorId, demandId string, at time.Time, distanceMeters float64) error

	ListOrders(ctx context.Context, vendorId string) ([]model.VendorOrder, error)
}
