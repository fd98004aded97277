package model

import (
	"time"

	"hatbazar/internal/demand-service/core/geo"
)

type Vendor struct {
	VendorId     string
	Name         string
	Email        string
	BusinessName string
	Category     string
	Location     geo.Coordinate

	TotalOrdersAccepted  int
	TotalOrdersDelivered int
	IsActive             bool
}

// VendorOrder is the denormalized per-vendor summary of an accepted
// demand. Status/timestamps here duplicate the demand row and may lag
// behind it; the demand is authoritative.
type VendorOrder struct {
	VendorId         string
	DemandId         string
	CustomerUsername string
	CustomerAddress  string
	Status           string
	AcceptedAt       time.Time
	DeliveredAt      time.Time
	DeliveryDistance float64
}
